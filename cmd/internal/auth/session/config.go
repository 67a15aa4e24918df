package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines runtime configuration for the session subsystem.
type Config struct {
	// TTL is the lifetime applied to both keys of a session pair. It
	// is refreshed to its full value on renewal and on login reuse.
	TTL time.Duration

	// TokenBytes is the entropy of a freshly minted session token.
	TokenBytes int

	// OpTimeout bounds each individual cache operation.
	OpTimeout time.Duration
}

// DefaultConfig returns the production defaults: thirty-day sessions
// with 32-byte tokens.
func DefaultConfig() Config {
	return Config{
		TTL:        30 * 24 * time.Hour,
		TokenBytes: 32,
		OpTimeout:  2 * time.Second,
	}
}

// LoadConfigFromEnv loads session configuration from environment
// variables, falling back to DefaultConfig.
//
// Optional (durations must be valid Go duration strings):
//   - ACADPORT_SESSION_TTL
//   - ACADPORT_SESSION_TOKEN_BYTES
//   - ACADPORT_SESSION_OP_TIMEOUT
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("ACADPORT_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := os.Getenv("ACADPORT_SESSION_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 16 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.TokenBytes = n
	}

	if v := os.Getenv("ACADPORT_SESSION_OP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.OpTimeout = d
	}

	return cfg, nil
}
