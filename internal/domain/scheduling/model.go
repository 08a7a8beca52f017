package scheduling

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Appointment statuses. SCHEDULED is the only state from which a visit can
// still be completed or cancelled.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Appointment is a booked visit between a patient and a doctor.
type Appointment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorStaffID uuid.UUID `db:"doctor_staff_id" json:"doctor_staff_id"`
	ScheduledAt   time.Time `db:"scheduled_at" json:"scheduled_at"`
	Status        string    `db:"status" json:"status"`
	Reason        *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Visit is the resolved clinical context of an appointment. The records
// service consumes this to stamp authorship without depending on the full
// appointment model.
type Visit struct {
	AppointmentID          uuid.UUID `json:"appointment_id"`
	AttendingDoctorStaffID uuid.UUID `json:"attending_doctor_staff_id"`
	PatientID              uuid.UUID `json:"patient_id"`
	ScheduledAt            time.Time `json:"scheduled_at"`
}
