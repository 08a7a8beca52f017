package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Visit is the clinical context resolved from an appointment reference.
type Visit struct {
	AttendingDoctorStaffID uuid.UUID
	PatientID              uuid.UUID
	ScheduledAt            time.Time
}

// AppointmentResolver resolves an appointment reference into its clinical
// context. Implementations return ErrNotFound when the reference does not
// resolve.
type AppointmentResolver interface {
	ResolveAppointment(ctx context.Context, id uuid.UUID) (*Visit, error)
}

// StaffDirectory answers the capability questions the workflow needs.
// IsActiveStaff returns ErrNotFound when the staff id does not resolve, so
// an unknown creator is distinguishable from a terminated one.
// IsActiveDoctor fails closed: a missing staff id resolves to false.
type StaffDirectory interface {
	IsActiveStaff(ctx context.Context, staffID uuid.UUID) (bool, error)
	IsActiveDoctor(ctx context.Context, staffID uuid.UUID) (bool, error)
}

type Service struct {
	repo         RecordRepository
	appointments AppointmentResolver
	staff        StaffDirectory
}

func NewService(repo RecordRepository, appointments AppointmentResolver, staff StaffDirectory) *Service {
	return &Service{repo: repo, appointments: appointments, staff: staff}
}

// CreateInput is the authoring payload. The patient and attending doctor are
// never taken from the caller; both come from the resolved appointment.
type CreateInput struct {
	AppointmentID uuid.UUID  `json:"appointment_id"`
	Title         string     `json:"title"`
	Diagnosis     string     `json:"diagnosis"`
	Treatment     *string    `json:"treatment,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	Tooth         *string    `json:"tooth,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	RecordDate    *time.Time `json:"record_date,omitempty"`
}

// CreateRecord authors a new PENDING record against an appointment. The
// creator must be ACTIVE staff; the record is stamped with the appointment's
// attending doctor and patient.
func (s *Service) CreateRecord(ctx context.Context, creatorStaffID uuid.UUID, in CreateInput) (*MedicalRecord, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(in.Diagnosis) == "" {
		return nil, &ValidationError{Field: "diagnosis", Message: "diagnosis is required"}
	}
	if in.AppointmentID == uuid.Nil {
		return nil, &ValidationError{Field: "appointment_id", Message: "appointment_id is required"}
	}

	active, err := s.staff.IsActiveStaff(ctx, creatorStaffID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("creator %s: %w", creatorStaffID, ErrNotFound)
		}
		return nil, fmt.Errorf("check creator: %w", err)
	}
	if !active {
		return nil, ErrStaffInactive
	}

	visit, err := s.appointments.ResolveAppointment(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("appointment %s: %w", in.AppointmentID, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve appointment: %w", err)
	}

	rec := &MedicalRecord{
		AppointmentID:          in.AppointmentID,
		PatientID:              visit.PatientID,
		CreatedByStaffID:       creatorStaffID,
		AttendingDoctorStaffID: visit.AttendingDoctorStaffID,
		Title:                  in.Title,
		Diagnosis:              in.Diagnosis,
		Treatment:              in.Treatment,
		Notes:                  in.Notes,
		Tooth:                  in.Tooth,
		Amount:                 in.Amount,
		RecordDate:             in.RecordDate,
		Status:                 StatusPending,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve moves a PENDING record to APPROVED. Only the record's attending
// doctor may approve, and only while still an active doctor.
func (s *Service) Approve(ctx context.Context, recordID, reviewerStaffID uuid.UUID) (*MedicalRecord, error) {
	return s.decide(ctx, recordID, reviewerStaffID, StatusApproved, nil)
}

// Reject moves a PENDING record to REJECTED. The reason is mandatory and
// stored verbatim.
func (s *Service) Reject(ctx context.Context, recordID, reviewerStaffID uuid.UUID, reason string) (*MedicalRecord, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Message: "rejection reason is required"}
	}
	return s.decide(ctx, recordID, reviewerStaffID, StatusRejected, &reason)
}

func (s *Service) decide(ctx context.Context, recordID, reviewerStaffID uuid.UUID, status string, reason *string) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.AttendingDoctorStaffID != reviewerStaffID {
		return nil, ErrForbidden
	}

	// Capability is checked at decision time, not token-issue time, so a
	// doctor terminated mid-session cannot keep reviewing. An inactive
	// reviewer lacks authority over the record, the same as a mismatch.
	active, err := s.staff.IsActiveDoctor(ctx, reviewerStaffID)
	if err != nil {
		return nil, fmt.Errorf("check reviewer: %w", err)
	}
	if !active {
		return nil, ErrForbidden
	}

	won, err := s.repo.Decide(ctx, recordID, status, reason, reviewerStaffID, time.Now())
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race or the id vanished. Re-read to tell which.
		if _, err := s.repo.GetByID(ctx, recordID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return s.repo.GetByID(ctx, recordID)
}

// ListForDoctor returns the doctor's review queue newest-first, sliced by
// the given filter.
func (s *Service) ListForDoctor(ctx context.Context, doctorStaffID uuid.UUID, filter ReviewFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	if !validFilters[filter] {
		return nil, 0, &ValidationError{Field: "filter", Message: fmt.Sprintf("invalid filter: %q", filter)}
	}
	return s.repo.ListByDoctor(ctx, doctorStaffID, filter, limit, offset)
}

// Summarize returns the doctor's queue breakdown. Total is derived from the
// three buckets so the counts always add up.
func (s *Service) Summarize(ctx context.Context, doctorStaffID uuid.UUID) (*ReviewSummary, error) {
	pending, approved, rejected, err := s.repo.CountByDoctor(ctx, doctorStaffID)
	if err != nil {
		return nil, err
	}
	return &ReviewSummary{
		Total:    pending + approved + rejected,
		Pending:  pending,
		Approved: approved,
		Rejected: rejected,
	}, nil
}
