package identity

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a dev/test fallback when Postgres is not configured.
// It enforces the same per-role natural-key uniqueness as the Postgres store.
type InMemoryStore struct {
	mu   sync.Mutex
	recs map[string]Record // (role:naturalKey) -> record
}

// NewInMemoryStore constructs an in-memory Store implementation.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{recs: make(map[string]Record)}
}

// FindByNaturalKey returns the record for (role, key) or ErrNotFound.
func (s *InMemoryStore) FindByNaturalKey(ctx context.Context, role Role, key string) (Record, error) {
	const op = "identity.FindByNaturalKey"

	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	k := New(role, key).Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[k]
	if !ok {
		return Record{}, NotFoundError{Op: op, Resource: string(role)}
	}
	return rec, nil
}

// Create inserts a new identity record, returning ErrConflict on duplicates.
func (s *InMemoryStore) Create(ctx context.Context, in CreateInput) (Record, error) {
	const op = "identity.Create"

	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	key := NormalizeNaturalKey(in.NaturalKey)
	if key == "" {
		return Record{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty natural key"}
	}
	if in.Secret == "" {
		return Record{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty secret"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := NewULID(now)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:          id,
		Role:        in.Role,
		NaturalKey:  key,
		Secret:      in.Secret,
		DisplayName: in.DisplayName,
		CreatedAt:   now,
	}

	mapKey := rec.Identity().Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.recs[mapKey]; exists {
		return Record{}, ConflictError{Op: op, Field: naturalKeyField(in.Role)}
	}
	s.recs[mapKey] = rec
	return rec, nil
}

func naturalKeyField(role Role) string {
	if role == RoleProctor {
		return "proctor_id"
	}
	return "usn"
}
