package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StaffLookup is the slice of the identity service the cache fronts.
type StaffLookup interface {
	IsActiveStaff(ctx context.Context, staffID uuid.UUID) (bool, error)
	IsActiveDoctor(ctx context.Context, staffID uuid.UUID) (bool, error)
}

// defaultTTL bounds the staleness of cached staff flags. Termination takes
// effect on cached paths within this window at the latest.
const defaultTTL = 30 * time.Second

// StaffDirectory caches IsActiveStaff lookups in Redis. IsActiveDoctor is
// deliberately NOT cached: approval decisions must see the staff member's
// current status, so the doctor capability check always hits the source.
type StaffDirectory struct {
	next StaffLookup
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

func NewStaffDirectory(next StaffLookup, rdb *redis.Client, log zerolog.Logger) *StaffDirectory {
	return &StaffDirectory{next: next, rdb: rdb, ttl: defaultTTL, log: log}
}

func staffKey(id uuid.UUID) string {
	return "staff:active:" + id.String()
}

func (d *StaffDirectory) IsActiveStaff(ctx context.Context, staffID uuid.UUID) (bool, error) {
	key := staffKey(staffID)

	val, err := d.rdb.Get(ctx, key).Result()
	if err == nil {
		return val == "1", nil
	}
	if err != redis.Nil {
		// Cache trouble is not a request failure; fall through to the source.
		d.log.Warn().Err(err).Str("key", key).Msg("staff cache read failed")
	}

	active, err := d.next.IsActiveStaff(ctx, staffID)
	if err != nil {
		return false, err
	}

	cached := "0"
	if active {
		cached = "1"
	}
	if err := d.rdb.Set(ctx, key, cached, d.ttl).Err(); err != nil {
		d.log.Warn().Err(err).Str("key", key).Msg("staff cache write failed")
	}
	return active, nil
}

func (d *StaffDirectory) IsActiveDoctor(ctx context.Context, staffID uuid.UUID) (bool, error) {
	return d.next.IsActiveDoctor(ctx, staffID)
}

// Invalidate drops the cached flag, used after a termination so the
// authoring path sees the change immediately rather than at TTL expiry.
func (d *StaffDirectory) Invalidate(ctx context.Context, staffID uuid.UUID) {
	if err := d.rdb.Del(ctx, staffKey(staffID)).Err(); err != nil {
		d.log.Warn().Err(err).Msg("staff cache invalidation failed")
	}
}
