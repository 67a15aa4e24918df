package password

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Config defines hashing cost and length policy.
//
// It is intentionally explicit and environment-driven so that deployments
// can tune parameters without code changes (see FromEnv in config.go).
type Config struct {
	// Cost is the bcrypt cost factor.
	Cost int

	// MinLength / MaxLength bound accepted plaintext secrets.
	// bcrypt silently truncates beyond 72 bytes, so MaxLength must not exceed it.
	MinLength int
	MaxLength int
}

// DefaultConfig returns parameters matching the original deployment (cost 10).
func DefaultConfig() Config {
	return Config{
		Cost:      bcrypt.DefaultCost,
		MinLength: 8,
		MaxLength: 72,
	}
}

// Hash hashes a plaintext secret with bcrypt and returns the encoded hash
// ($2a$... / $2b$...). This is the only code path that writes credentials.
func (c Config) Hash(plain string) (string, error) {
	if len(plain) < c.MinLength {
		return "", ErrPasswordTooShort
	}
	if c.MaxLength > 0 && len(plain) > c.MaxLength {
		return "", ErrPasswordTooLong
	}

	cost := c.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashFailed, err)
	}
	return string(b), nil
}

// Verify checks a presented secret against a stored credential.
//
// Returns (true, nil) for a match and (false, nil) for a mismatch; an error
// is reserved for operational failures. Verification never errors on a
// malformed stored value — such values fall through to the legacy path and
// simply fail to match unless equal.
func (c Config) Verify(presented, stored string) (bool, error) {
	if stored == "" {
		return false, nil
	}

	if IsHashed(stored) {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented))
		if err == nil {
			return true, nil
		}
		// Both mismatch and malformed-hash are a non-match; neither is
		// distinguishable to the caller to avoid oracle behavior.
		return false, nil
	}

	// Legacy plaintext credential: constant-time equality.
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1, nil
}

// IsHashed reports whether a stored value is a bcrypt credential.
// The structural marker is the standard bcrypt prefix.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// Hash hashes with the environment-derived configuration.
func Hash(plain string) (string, error) {
	return FromEnv().Hash(plain)
}

// Verify verifies with the environment-derived configuration.
func Verify(presented, stored string) (bool, error) {
	return FromEnv().Verify(presented, stored)
}
