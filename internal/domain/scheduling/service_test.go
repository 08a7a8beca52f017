package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *Appointment) error {
	m.appointments[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) ListByDoctor(_ context.Context, doctorStaffID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appointments {
		if a.DoctorStaffID == doctorStaffID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

type mockDoctorDirectory struct {
	active map[uuid.UUID]bool
}

func (m *mockDoctorDirectory) IsActiveDoctor(_ context.Context, staffID uuid.UUID) (bool, error) {
	return m.active[staffID], nil
}

func newTestService() (*Service, *mockDoctorDirectory) {
	dir := &mockDoctorDirectory{active: make(map[uuid.UUID]bool)}
	return NewService(newMockAppointmentRepo(), dir), dir
}

func bookAppointment(t *testing.T, svc *Service, dir *mockDoctorDirectory) *Appointment {
	t.Helper()
	doctorID := uuid.New()
	dir.active[doctorID] = true
	a := &Appointment{
		PatientID:     uuid.New(),
		DoctorStaffID: doctorID,
		ScheduledAt:   time.Now().Add(24 * time.Hour),
	}
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return a
}

func TestCreateAppointment(t *testing.T) {
	svc, dir := newTestService()
	a := bookAppointment(t, svc, dir)
	if a.Status != StatusScheduled {
		t.Errorf("expected SCHEDULED, got %s", a.Status)
	}
}

func TestCreateAppointment_InactiveDoctor(t *testing.T) {
	svc, _ := newTestService()
	a := &Appointment{
		PatientID:     uuid.New(),
		DoctorStaffID: uuid.New(),
		ScheduledAt:   time.Now().Add(time.Hour),
	}
	if err := svc.CreateAppointment(context.Background(), a); err == nil {
		t.Error("expected error for inactive doctor")
	}
}

func TestCreateAppointment_MissingFields(t *testing.T) {
	svc, dir := newTestService()
	doctorID := uuid.New()
	dir.active[doctorID] = true

	cases := []*Appointment{
		{DoctorStaffID: doctorID, ScheduledAt: time.Now()},
		{PatientID: uuid.New(), ScheduledAt: time.Now()},
		{PatientID: uuid.New(), DoctorStaffID: doctorID},
	}
	for i, a := range cases {
		if err := svc.CreateAppointment(context.Background(), a); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCancelAppointment(t *testing.T) {
	svc, dir := newTestService()
	a := bookAppointment(t, svc, dir)

	if err := svc.CancelAppointment(context.Background(), a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetAppointment(context.Background(), a.ID)
	if got.Status != StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", got.Status)
	}

	// idempotent
	if err := svc.CancelAppointment(context.Background(), a.ID); err != nil {
		t.Errorf("expected cancel to be idempotent, got %v", err)
	}
}

func TestCancelAppointment_Completed(t *testing.T) {
	svc, dir := newTestService()
	a := bookAppointment(t, svc, dir)
	svc.CompleteAppointment(context.Background(), a.ID)

	if err := svc.CancelAppointment(context.Background(), a.ID); err == nil {
		t.Error("expected error cancelling a completed appointment")
	}
}

func TestCompleteAppointment(t *testing.T) {
	svc, dir := newTestService()
	a := bookAppointment(t, svc, dir)

	if err := svc.CompleteAppointment(context.Background(), a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetAppointment(context.Background(), a.ID)
	if got.Status != StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", got.Status)
	}
}

func TestResolve(t *testing.T) {
	svc, dir := newTestService()
	a := bookAppointment(t, svc, dir)

	v, err := svc.Resolve(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AttendingDoctorStaffID != a.DoctorStaffID {
		t.Errorf("expected attending doctor %s, got %s", a.DoctorStaffID, v.AttendingDoctorStaffID)
	}
	if v.PatientID != a.PatientID {
		t.Errorf("expected patient %s, got %s", a.PatientID, v.PatientID)
	}
	if !v.ScheduledAt.Equal(a.ScheduledAt) {
		t.Errorf("expected scheduled_at %v, got %v", a.ScheduledAt, v.ScheduledAt)
	}
}

func TestResolve_NotFound(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Resolve(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReschedule(t *testing.T) {
	svc, dir := newTestService()
	a := bookAppointment(t, svc, dir)
	newTime := a.ScheduledAt.Add(48 * time.Hour)

	updated, err := svc.Reschedule(context.Background(), a.ID, newTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.ScheduledAt.Equal(newTime) {
		t.Errorf("expected %v, got %v", newTime, updated.ScheduledAt)
	}
}

func TestReschedule_Cancelled(t *testing.T) {
	svc, dir := newTestService()
	a := bookAppointment(t, svc, dir)
	svc.CancelAppointment(context.Background(), a.ID)

	if _, err := svc.Reschedule(context.Background(), a.ID, time.Now().Add(time.Hour)); err == nil {
		t.Error("expected error rescheduling a cancelled appointment")
	}
}
