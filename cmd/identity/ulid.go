package identity

import (
	"time"

	"acadport/cmd/identity/ids"
)

// NewULID returns a new ULID (26-char string) for identity record IDs.
func NewULID(now time.Time) (string, error) {
	return ids.NewULID(now)
}
