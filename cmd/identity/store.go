package identity

import (
	"context"
	"time"
)

// Record is the stored identity row for either role.
//
// Secret holds the authentication material: the date of birth for students
// (the shared secret, stored as-is) and the password credential for proctors
// (bcrypt hash, or legacy plaintext for pre-migration rows).
type Record struct {
	ID         string
	Role       Role
	NaturalKey string
	Secret     string
	// DisplayName is set for proctors only.
	DisplayName string
	CreatedAt   time.Time
}

// Identity returns the role-tagged principal for this record.
func (r Record) Identity() Identity {
	return Identity{Role: r.Role, NaturalKey: r.NaturalKey}
}

// CreateInput describes a registration request.
// NaturalKey is normalized by the store; Secret must already be in its
// stored form (hashed for proctors, plain date of birth for students).
type CreateInput struct {
	Role        Role
	NaturalKey  string
	Secret      string
	DisplayName string
	Now         time.Time
}

// Store is the credential-store boundary.
//
// Natural-key lookups are case-insensitive; uniqueness of natural key per
// role is enforced by the implementation.
type Store interface {
	// FindByNaturalKey returns the record for (role, key) or ErrNotFound.
	FindByNaturalKey(ctx context.Context, role Role, key string) (Record, error)

	// Create inserts a new identity record, returning ErrConflict when the
	// natural key already exists for the role.
	Create(ctx context.Context, in CreateInput) (Record, error)
}
