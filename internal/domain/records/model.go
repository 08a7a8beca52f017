package records

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record statuses. PENDING is the only non-terminal state; APPROVED and
// REJECTED are terminal and a record never leaves them.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// ReviewFilter selects a slice of a doctor's review queue.
type ReviewFilter string

const (
	FilterAll      ReviewFilter = "ALL"
	FilterPending  ReviewFilter = "PENDING"
	FilterReviewed ReviewFilter = "REVIEWED"
)

var validFilters = map[ReviewFilter]bool{
	FilterAll: true, FilterPending: true, FilterReviewed: true,
}

// ParseFilter validates a filter string. An empty string means ALL.
func ParseFilter(s string) (ReviewFilter, error) {
	if s == "" {
		return FilterAll, nil
	}
	f := ReviewFilter(s)
	if !validFilters[f] {
		return "", &ValidationError{Field: "filter", Message: fmt.Sprintf("invalid filter: %q", s)}
	}
	return f, nil
}

// MedicalRecord is a clinical entry authored against an appointment. The
// attending doctor is stamped at creation from the appointment and never
// changes afterwards.
type MedicalRecord struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	AppointmentID          uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	PatientID              uuid.UUID  `db:"patient_id" json:"patient_id"`
	CreatedByStaffID       uuid.UUID  `db:"created_by_staff_id" json:"created_by_staff_id"`
	AttendingDoctorStaffID uuid.UUID  `db:"attending_doctor_staff_id" json:"attending_doctor_staff_id"`
	Title                  string     `db:"title" json:"title"`
	Diagnosis              string     `db:"diagnosis" json:"diagnosis"`
	Treatment              *string    `db:"treatment" json:"treatment,omitempty"`
	Notes                  *string    `db:"notes" json:"notes,omitempty"`
	Tooth                  *string    `db:"tooth" json:"tooth,omitempty"`
	Amount                 *float64   `db:"amount" json:"amount,omitempty"`
	RecordDate             *time.Time `db:"record_date" json:"record_date,omitempty"`
	Status                 string     `db:"status" json:"status"`
	RejectionReason        *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ApprovedBy             *uuid.UUID `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt             *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// IsReviewed reports whether the record has reached a terminal state.
func (r *MedicalRecord) IsReviewed() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

// ReviewSummary is the per-doctor queue breakdown. Total always equals
// Pending + Approved + Rejected.
type ReviewSummary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
