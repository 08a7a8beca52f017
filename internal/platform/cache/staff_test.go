package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type mockLookup struct {
	staffCalls  int
	doctorCalls int
	active      bool
	err         error
}

func (m *mockLookup) IsActiveStaff(_ context.Context, _ uuid.UUID) (bool, error) {
	m.staffCalls++
	return m.active, m.err
}

func (m *mockLookup) IsActiveDoctor(_ context.Context, _ uuid.UUID) (bool, error) {
	m.doctorCalls++
	return m.active, nil
}

// unreachableClient returns a client whose commands all fail, exercising the
// fall-through-to-source path without a running Redis.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

func TestIsActiveStaff_FallsThroughOnCacheError(t *testing.T) {
	next := &mockLookup{active: true}
	d := NewStaffDirectory(next, unreachableClient(), zerolog.Nop())

	active, err := d.IsActiveStaff(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !active {
		t.Error("expected source answer to pass through")
	}
	if next.staffCalls != 1 {
		t.Errorf("expected 1 source call, got %d", next.staffCalls)
	}
}

// Source errors, not-found included, pass through untouched so the caller's
// error mapping still works behind the cache.
func TestIsActiveStaff_SourceErrorPropagates(t *testing.T) {
	wantErr := errors.New("staff not found")
	next := &mockLookup{err: wantErr}
	d := NewStaffDirectory(next, unreachableClient(), zerolog.Nop())

	_, err := d.IsActiveStaff(context.Background(), uuid.New())
	if !errors.Is(err, wantErr) {
		t.Errorf("expected source error to propagate, got %v", err)
	}
}

func TestIsActiveDoctor_NeverCached(t *testing.T) {
	next := &mockLookup{active: true}
	d := NewStaffDirectory(next, unreachableClient(), zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := d.IsActiveDoctor(context.Background(), uuid.New()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if next.doctorCalls != 3 {
		t.Errorf("expected every doctor check to hit the source, got %d calls", next.doctorCalls)
	}
}
