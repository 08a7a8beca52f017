package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentora/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordCols = `id, appointment_id, patient_id, created_by_staff_id, attending_doctor_staff_id,
	title, diagnosis, treatment, notes, tooth, amount, record_date,
	status, rejection_reason, approved_by, approved_at, created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var r MedicalRecord
	err := row.Scan(&r.ID, &r.AppointmentID, &r.PatientID, &r.CreatedByStaffID,
		&r.AttendingDoctorStaffID, &r.Title, &r.Diagnosis, &r.Treatment,
		&r.Notes, &r.Tooth, &r.Amount, &r.RecordDate,
		&r.Status, &r.RejectionReason, &r.ApprovedBy, &r.ApprovedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (p *recordRepoPG) Create(ctx context.Context, r *MedicalRecord) error {
	r.ID = uuid.New()
	_, err := conn(ctx, p.pool).Exec(ctx, `
		INSERT INTO medical_record (id, appointment_id, patient_id, created_by_staff_id,
			attending_doctor_staff_id, title, diagnosis, treatment, notes, tooth,
			amount, record_date, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		r.ID, r.AppointmentID, r.PatientID, r.CreatedByStaffID,
		r.AttendingDoctorStaffID, r.Title, r.Diagnosis, r.Treatment, r.Notes,
		r.Tooth, r.Amount, r.RecordDate, r.Status)
	return err
}

func (p *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(conn(ctx, p.pool).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_record WHERE id = $1`, id))
}

// Decide is the compare-and-set on status. The WHERE clause carries the
// PENDING guard so two concurrent reviewers cannot both win.
func (p *recordRepoPG) Decide(ctx context.Context, id uuid.UUID, status string, reason *string, decidedBy uuid.UUID, decidedAt time.Time) (bool, error) {
	tag, err := conn(ctx, p.pool).Exec(ctx, `
		UPDATE medical_record
		SET status=$2, rejection_reason=$3, approved_by=$4, approved_at=$5, updated_at=NOW()
		WHERE id = $1 AND status = 'PENDING'`,
		id, status, reason, decidedBy, decidedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func filterClause(filter ReviewFilter) string {
	switch filter {
	case FilterPending:
		return ` AND status = 'PENDING'`
	case FilterReviewed:
		return ` AND status IN ('APPROVED','REJECTED')`
	default:
		return ``
	}
}

func (p *recordRepoPG) ListByDoctor(ctx context.Context, doctorStaffID uuid.UUID, filter ReviewFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	q := conn(ctx, p.pool)
	where := `WHERE attending_doctor_staff_id = $1` + filterClause(filter)

	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_record `+where, doctorStaffID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx,
		`SELECT `+recordCols+` FROM medical_record `+where+
			` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		doctorStaffID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*MedicalRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, r)
	}
	return items, total, rows.Err()
}

func (p *recordRepoPG) CountByDoctor(ctx context.Context, doctorStaffID uuid.UUID) (pending, approved, rejected int, err error) {
	err = conn(ctx, p.pool).QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'APPROVED'),
			COUNT(*) FILTER (WHERE status = 'REJECTED')
		FROM medical_record WHERE attending_doctor_staff_id = $1`,
		doctorStaffID).Scan(&pending, &approved, &rejected)
	return pending, approved, rejected, err
}
