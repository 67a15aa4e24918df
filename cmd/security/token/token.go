package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultBytes is the entropy of a session token before encoding.
// 32 bytes yields a 43-character URL-safe string.
const DefaultBytes = 32

// MinBytes is the smallest entropy accepted by NewOpaque. Anything
// shorter is trivially brute-forceable for a bearer credential.
const MinBytes = 16

// NewOpaque returns a random opaque token of n bytes of entropy,
// encoded with unpadded URL-safe base64.
func NewOpaque(n int) (string, error) {
	if n < MinBytes {
		return "", fmt.Errorf("token: entropy %d below minimum %d", n, MinBytes)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: read entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// New returns a token with the default entropy.
func New() (string, error) {
	return NewOpaque(DefaultBytes)
}
