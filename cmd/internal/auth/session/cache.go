package session

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or has
// expired. Implementations must not return it for infrastructure
// failures; those map to ErrStoreUnavailable.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the narrow key-value surface the session manager needs.
//
// Keys are plain strings, values are plain strings, and every write
// carries a TTL. The manager never stores a value without an expiry.
type Cache interface {
	// Get returns the value at key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)

	// SetTTL writes value at key with the given TTL, replacing any
	// existing entry and its remaining TTL.
	SetTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Expire resets the TTL of an existing key. It reports false when
	// the key does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
