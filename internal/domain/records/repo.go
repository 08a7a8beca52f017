package records

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)

	// Decide moves a PENDING record to a terminal status in a single
	// conditional update, stamping the deciding doctor and time. It reports
	// false when no row was updated, either because the record does not
	// exist or because it already left PENDING; the caller re-reads to tell
	// the two apart.
	Decide(ctx context.Context, id uuid.UUID, status string, reason *string, decidedBy uuid.UUID, decidedAt time.Time) (bool, error)

	// ListByDoctor returns the doctor's records newest-first.
	ListByDoctor(ctx context.Context, doctorStaffID uuid.UUID, filter ReviewFilter, limit, offset int) ([]*MedicalRecord, int, error)

	// CountByDoctor returns the per-status breakdown for the doctor's queue.
	CountByDoctor(ctx context.Context, doctorStaffID uuid.UUID) (pending, approved, rejected int, err error)
}
