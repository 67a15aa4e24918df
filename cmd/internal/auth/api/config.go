package authapi

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SessionHeader carries the opaque session token on every
// authenticated request.
const SessionHeader = "X-Session-Id"

// Config controls auth API behavior and security defaults.
type Config struct {
	MaxBodyBytes int64

	// Fixed-window login throttle per natural key. Zero max disables it.
	LoginMax    int
	LoginWindow time.Duration
}

// LoadConfigFromEnv loads auth API config from environment variables
// with safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		MaxBodyBytes: envInt64("ACADPORT_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
		LoginMax:     envInt("ACADPORT_AUTH_LOGIN_MAX", 10),
		LoginWindow:  envDuration("ACADPORT_AUTH_LOGIN_WINDOW", 5*time.Minute),
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return cfg
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
