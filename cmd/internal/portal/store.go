package portal

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrProctorNotFound is returned when the proctor id does not exist.
	ErrProctorNotFound = errors.New("proctor not found")

	// ErrNotAssigned is returned when the student exists but is not on
	// the proctor's roster (or does not exist at all; the two are not
	// distinguished, to avoid leaking which USNs exist).
	ErrNotAssigned = errors.New("student not assigned to proctor")
)

// Proctee is a roster entry. The student's date of birth is their
// credential and never leaves the credential store through this path.
type Proctee struct {
	ID        string    `json:"-"`
	USN       string    `json:"usn"`
	CreatedAt time.Time `json:"created_at"`
}

// RosterStore maps proctors to their assigned students.
type RosterStore interface {
	// ListProctees returns the roster for a proctor natural key, or
	// ErrProctorNotFound.
	ListProctees(ctx context.Context, proctorID string) ([]Proctee, error)

	// GetProctee returns one roster entry, ErrProctorNotFound for an
	// unknown proctor, or ErrNotAssigned when the student is not on
	// this proctor's roster.
	GetProctee(ctx context.Context, proctorID, usn string) (Proctee, error)
}
