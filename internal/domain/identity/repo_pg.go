package identity

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

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// =========== Account Repository ===========

type accountRepoPG struct{ pool *pgxpool.Pool }

func NewAccountRepoPG(pool *pgxpool.Pool) AccountRepository {
	return &accountRepoPG{pool: pool}
}

const accountCols = `id, username, email, password_hash, role, active, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role,
		&a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &a, nil
}

func (r *accountRepoPG) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO account (id, username, email, password_hash, role, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.Role, a.Active)
	return err
}

func (r *accountRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+accountCols+` FROM account WHERE id = $1`, id))
}

func (r *accountRepoPG) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return scanAccount(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+accountCols+` FROM account WHERE username = $1`, username))
}

func (r *accountRepoPG) Update(ctx context.Context, a *Account) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE account SET email=$2, role=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Email, a.Role, a.Active)
	return err
}

func (r *accountRepoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE account SET active=false, updated_at=NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =========== Profile Repository ===========

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepoPG{pool: pool}
}

const profileCols = `id, full_name, phone, birth_date, gender, address, avatar_url, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.FullName, &p.Phone, &p.BirthDate, &p.Gender,
		&p.Address, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (r *profileRepoPG) Create(ctx context.Context, p *Profile) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO profile (id, full_name, phone, birth_date, gender, address, avatar_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.FullName, p.Phone, p.BirthDate, p.Gender, p.Address, p.AvatarURL)
	return err
}

func (r *profileRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return scanProfile(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+profileCols+` FROM profile WHERE id = $1`, id))
}

func (r *profileRepoPG) Update(ctx context.Context, p *Profile) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE profile SET full_name=$2, phone=$3, birth_date=$4, gender=$5,
			address=$6, avatar_url=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FullName, p.Phone, p.BirthDate, p.Gender, p.Address, p.AvatarURL)
	return err
}

// =========== Staff Repository ===========

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewStaffRepoPG(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

const staffCols = `id, account_id, profile_id, role, status, work_start, work_end, created_at, updated_at`

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.AccountID, &s.ProfileID, &s.Role, &s.Status,
		&s.WorkStart, &s.WorkEnd, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO staff (id, account_id, profile_id, role, status, work_start, work_end)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.AccountID, s.ProfileID, s.Role, s.Status, s.WorkStart, s.WorkEnd)
	return err
}

func (r *staffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return scanStaff(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
}

func (r *staffRepoPG) GetByAccount(ctx context.Context, accountID uuid.UUID) (*Staff, error) {
	return scanStaff(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+staffCols+` FROM staff WHERE account_id = $1`, accountID))
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE staff SET role=$2, status=$3, work_start=$4, work_end=$5, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Role, s.Status, s.WorkStart, s.WorkEnd)
	return err
}

func (r *staffRepoPG) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	q := conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx,
		`SELECT `+staffCols+` FROM staff ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// =========== License Repository ===========

type licenseRepoPG struct{ pool *pgxpool.Pool }

func NewLicenseRepoPG(pool *pgxpool.Pool) LicenseRepository {
	return &licenseRepoPG{pool: pool}
}

const licenseCols = `id, doctor_id, license_number, issued_by, issued_date, document_urls, created_at, updated_at`

func scanLicense(row pgx.Row) (*License, error) {
	var l License
	var issuedDate *time.Time
	err := row.Scan(&l.ID, &l.DoctorID, &l.LicenseNumber, &l.IssuedBy,
		&issuedDate, &l.DocumentURLs, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	l.IssuedDate = issuedDate
	return &l, nil
}

func (r *licenseRepoPG) Create(ctx context.Context, l *License) error {
	l.ID = uuid.New()
	if l.DocumentURLs == nil {
		l.DocumentURLs = []string{}
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO license (id, doctor_id, license_number, issued_by, issued_date, document_urls)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, l.DoctorID, l.LicenseNumber, l.IssuedBy, l.IssuedDate, l.DocumentURLs)
	return err
}

func (r *licenseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*License, error) {
	return scanLicense(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+licenseCols+` FROM license WHERE id = $1`, id))
}

func (r *licenseRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*License, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+licenseCols+` FROM license WHERE doctor_id = $1 ORDER BY created_at ASC`,
		doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (r *licenseRepoPG) Update(ctx context.Context, l *License) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE license SET issued_by=$2, issued_date=$3, document_urls=$4, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.IssuedBy, l.IssuedDate, l.DocumentURLs)
	return err
}
