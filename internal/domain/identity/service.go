package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TxRunner runs fn atomically. The server binary wires it to a database
// transaction; without one, writes run sequentially.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// StaffInvalidator is notified after an employment status change so cached
// staff lookups drop the stale entry instead of waiting out their TTL.
type StaffInvalidator func(ctx context.Context, staffID uuid.UUID)

type Service struct {
	accounts   AccountRepository
	profiles   ProfileRepository
	staff      StaffRepository
	licenses   LicenseRepository
	txRun      TxRunner
	invalidate StaffInvalidator
}

func NewService(accounts AccountRepository, profiles ProfileRepository, staff StaffRepository, licenses LicenseRepository) *Service {
	return &Service{accounts: accounts, profiles: profiles, staff: staff, licenses: licenses}
}

func (s *Service) SetTxRunner(run TxRunner) {
	s.txRun = run
}

func (s *Service) SetStaffInvalidator(fn StaffInvalidator) {
	s.invalidate = fn
}

// -- Account --

func (s *Service) CreateAccount(ctx context.Context, a *Account) error {
	if strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(a.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := ParseRole(string(a.Role)); err != nil {
		return err
	}
	a.Active = true
	return s.accounts.Create(ctx, a)
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// DeactivateAccount disables a login without deleting it. Historical records
// keep resolving against the account id.
func (s *Service) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	return s.accounts.Deactivate(ctx, id)
}

// -- Profile --

func (s *Service) CreateProfile(ctx context.Context, p *Profile) error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	return s.profiles.Create(ctx, p)
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, p *Profile) error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	return s.profiles.Update(ctx, p)
}

// -- Staff --

// HireStaff creates the employment envelope for an existing account and
// profile. Both references must resolve; the staff role defaults to the
// account role when not set.
func (s *Service) HireStaff(ctx context.Context, st *Staff) error {
	acct, err := s.accounts.GetByID(ctx, st.AccountID)
	if err != nil {
		return fmt.Errorf("resolve account: %w", err)
	}
	if _, err := s.profiles.GetByID(ctx, st.ProfileID); err != nil {
		return fmt.Errorf("resolve profile: %w", err)
	}

	if st.Role == "" {
		st.Role = acct.Role
	}
	if _, err := ParseRole(string(st.Role)); err != nil {
		return err
	}
	if !st.Role.IsStaffRole() {
		return fmt.Errorf("role %s cannot be hired as staff", st.Role)
	}
	if st.WorkStart.IsZero() {
		st.WorkStart = time.Now()
	}
	st.Status = StaffActive
	st.WorkEnd = nil
	return s.staff.Create(ctx, st)
}

// OnboardStaff creates the account, profile, and employment record in one
// step. With a TxRunner wired, either all three land or none do.
func (s *Service) OnboardStaff(ctx context.Context, a *Account, p *Profile, st *Staff) error {
	run := s.txRun
	if run == nil {
		run = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return run(ctx, func(ctx context.Context) error {
		if err := s.CreateAccount(ctx, a); err != nil {
			return err
		}
		if err := s.CreateProfile(ctx, p); err != nil {
			return err
		}
		st.AccountID = a.ID
		st.ProfileID = p.ID
		return s.HireStaff(ctx, st)
	})
}

func (s *Service) GetStaff(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

func (s *Service) GetStaffByAccount(ctx context.Context, accountID uuid.UUID) (*Staff, error) {
	return s.staff.GetByAccount(ctx, accountID)
}

func (s *Service) ListStaff(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	return s.staff.List(ctx, limit, offset)
}

// TerminateStaff marks the employment inactive and stamps work_end. An
// inactive staff member can no longer author or review records, but the row
// stays so existing records keep their attribution.
func (s *Service) TerminateStaff(ctx context.Context, id uuid.UUID, workEnd time.Time) error {
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if st.Status == StaffInactive {
		return nil // already terminated
	}
	if workEnd.IsZero() {
		workEnd = time.Now()
	}
	st.Status = StaffInactive
	st.WorkEnd = &workEnd
	if err := s.staff.Update(ctx, st); err != nil {
		return err
	}
	if s.invalidate != nil {
		s.invalidate(ctx, id)
	}
	return nil
}

// IsActiveStaff reports whether the staff member is ACTIVE. A missing staff
// id returns ErrNotFound so callers can distinguish an unknown creator from
// a terminated one.
func (s *Service) IsActiveStaff(ctx context.Context, id uuid.UUID) (bool, error) {
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return st.IsActive(), nil
}

// IsActiveDoctor reports whether the staff member exists, is ACTIVE, and
// holds the doctor role. A missing staff id resolves to false rather than an
// error so capability checks fail closed.
func (s *Service) IsActiveDoctor(ctx context.Context, id uuid.UUID) (bool, error) {
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return st.IsActive() && st.IsDoctor(), nil
}

// -- License --

// RegisterLicense records a practicing credential for a doctor. The owning
// staff member must hold the doctor role; employment status is not checked
// because credentials outlive employment.
func (s *Service) RegisterLicense(ctx context.Context, l *License) error {
	if strings.TrimSpace(l.LicenseNumber) == "" {
		return fmt.Errorf("license_number is required")
	}
	st, err := s.staff.GetByID(ctx, l.DoctorID)
	if err != nil {
		return fmt.Errorf("resolve doctor: %w", err)
	}
	if !st.IsDoctor() {
		return fmt.Errorf("staff %s is not a doctor", st.ID)
	}
	return s.licenses.Create(ctx, l)
}

func (s *Service) GetLicense(ctx context.Context, id uuid.UUID) (*License, error) {
	return s.licenses.GetByID(ctx, id)
}

// GetLicensesForDoctor returns the doctor's licenses in insertion order.
func (s *Service) GetLicensesForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*License, error) {
	return s.licenses.ListByDoctor(ctx, doctorID)
}

// AddLicenseDocument appends an opaque document reference to a license. The
// file itself lives in the external document service; only the reference is
// recorded here.
func (s *Service) AddLicenseDocument(ctx context.Context, licenseID uuid.UUID, url string) (*License, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("document url is required")
	}
	l, err := s.licenses.GetByID(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	l.DocumentURLs = append(l.DocumentURLs, url)
	if err := s.licenses.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}
