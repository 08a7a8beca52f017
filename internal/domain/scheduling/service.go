package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DoctorDirectory is the slice of the identity service the scheduler needs.
type DoctorDirectory interface {
	IsActiveDoctor(ctx context.Context, staffID uuid.UUID) (bool, error)
}

type Service struct {
	appointments AppointmentRepository
	doctors      DoctorDirectory
}

func NewService(appointments AppointmentRepository, doctors DoctorDirectory) *Service {
	return &Service{appointments: appointments, doctors: doctors}
}

// CreateAppointment books a visit. The assigned doctor must be an active
// doctor at booking time.
func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorStaffID == uuid.Nil {
		return fmt.Errorf("doctor_staff_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}

	ok, err := s.doctors.IsActiveDoctor(ctx, a.DoctorStaffID)
	if err != nil {
		return fmt.Errorf("check doctor: %w", err)
	}
	if !ok {
		return fmt.Errorf("staff %s is not an active doctor", a.DoctorStaffID)
	}

	a.Status = StatusScheduled
	return s.appointments.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// CancelAppointment moves a SCHEDULED visit to CANCELLED. Completed visits
// cannot be cancelled.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == StatusCancelled {
		return nil // already cancelled
	}
	if a.Status != StatusScheduled {
		return fmt.Errorf("appointment %s is %s and cannot be cancelled", a.ID, a.Status)
	}
	a.Status = StatusCancelled
	return s.appointments.Update(ctx, a)
}

// CompleteAppointment marks a SCHEDULED visit as seen.
func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != StatusScheduled {
		return fmt.Errorf("appointment %s is %s and cannot be completed", a.ID, a.Status)
	}
	a.Status = StatusCompleted
	return s.appointments.Update(ctx, a)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorStaffID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorStaffID, limit, offset)
}

// Resolve looks up the clinical context of an appointment. The records
// service calls this to stamp the attending doctor and patient on a new
// medical record.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*Visit, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Visit{
		AppointmentID:          a.ID,
		AttendingDoctorStaffID: a.DoctorStaffID,
		PatientID:              a.PatientID,
		ScheduledAt:            a.ScheduledAt,
	}, nil
}

// Reschedule moves a SCHEDULED visit to a new time.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, at time.Time) (*Appointment, error) {
	if at.IsZero() {
		return nil, fmt.Errorf("scheduled_at is required")
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusScheduled {
		return nil, fmt.Errorf("appointment %s is %s and cannot be rescheduled", a.ID, a.Status)
	}
	a.ScheduledAt = at
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
