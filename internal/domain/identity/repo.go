package identity

import (
	"context"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Update(ctx context.Context, a *Account) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
}

type StaffRepository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	List(ctx context.Context, limit, offset int) ([]*Staff, int, error)
}

type LicenseRepository interface {
	Create(ctx context.Context, l *License) error
	GetByID(ctx context.Context, id uuid.UUID) (*License, error)
	// ListByDoctor returns the doctor's licenses in insertion order.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*License, error)
	Update(ctx context.Context, l *License) error
}
