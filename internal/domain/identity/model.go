package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Role classifies what a login identity is allowed to do. Roles are a closed
// set; free-form role strings from clients are rejected at the boundary.
type Role string

const (
	RoleDoctor       Role = "DOCTOR"
	RoleAssistant    Role = "ASSISTANT"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleAdmin        Role = "ADMIN"
	RolePharmacy     Role = "PHARMACY"
	RolePatient      Role = "PATIENT"
)

var validRoles = map[Role]bool{
	RoleDoctor: true, RoleAssistant: true, RoleReceptionist: true,
	RoleAdmin: true, RolePharmacy: true, RolePatient: true,
}

// ParseRole validates a role string against the closed role set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !validRoles[r] {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return r, nil
}

// IsStaffRole reports whether the role belongs to clinic personnel (as
// opposed to patients).
func (r Role) IsStaffRole() bool {
	return validRoles[r] && r != RolePatient
}

// Staff employment status. Staff rows are never hard-deleted; termination is
// a status transition so historical records keep resolving.
const (
	StaffActive   = "ACTIVE"
	StaffInactive = "INACTIVE"
)

// Account is a login identity. Accounts are deactivated rather than deleted.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile holds person attributes. A profile is referenced by at most one
// staff record at a time, and may also represent a patient.
type Profile struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FullName  string     `db:"full_name" json:"full_name"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	AvatarURL *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Staff is the employment envelope linking an Account to a Profile.
type Staff struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	AccountID uuid.UUID  `db:"account_id" json:"account_id"`
	ProfileID uuid.UUID  `db:"profile_id" json:"profile_id"`
	Role      Role       `db:"role" json:"role"`
	Status    string     `db:"status" json:"status"`
	WorkStart time.Time  `db:"work_start" json:"work_start"`
	WorkEnd   *time.Time `db:"work_end" json:"work_end,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the staff member may act in the clinic.
func (s *Staff) IsActive() bool {
	return s.Status == StaffActive
}

// IsDoctor reports whether the staff member holds the doctor role.
func (s *Staff) IsDoctor() bool {
	return s.Role == RoleDoctor
}

// License is a doctor's practicing credential. Licenses are kept for
// compliance history and never deleted; documents are opaque references to
// files held by the external document service.
type License struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	LicenseNumber string     `db:"license_number" json:"license_number"`
	IssuedBy      *string    `db:"issued_by" json:"issued_by,omitempty"`
	IssuedDate    *time.Time `db:"issued_date" json:"issued_date,omitempty"`
	DocumentURLs  []string   `db:"document_urls" json:"document_urls"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
