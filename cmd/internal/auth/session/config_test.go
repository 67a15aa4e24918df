package session

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("ACADPORT_SESSION_TTL", "")
	t.Setenv("ACADPORT_SESSION_TOKEN_BYTES", "")
	t.Setenv("ACADPORT_SESSION_OP_TIMEOUT", "")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TTL != 30*24*time.Hour {
		t.Fatalf("ttl mismatch: %v", cfg.TTL)
	}
	if cfg.TokenBytes != 32 {
		t.Fatalf("token bytes mismatch: %d", cfg.TokenBytes)
	}
}

func TestLoadConfigFromEnv_InvalidTTL(t *testing.T) {
	t.Setenv("ACADPORT_SESSION_TTL", "-24h")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for negative ttl, got %v", err)
	}

	t.Setenv("ACADPORT_SESSION_TTL", "a fortnight")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for unparsable ttl, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidTokenBytes(t *testing.T) {
	t.Setenv("ACADPORT_SESSION_TOKEN_BYTES", "8")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for small token bytes, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv("ACADPORT_SESSION_TTL", "720h")
	t.Setenv("ACADPORT_SESSION_TOKEN_BYTES", "48")
	t.Setenv("ACADPORT_SESSION_OP_TIMEOUT", "500ms")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TTL != 720*time.Hour {
		t.Fatalf("ttl mismatch: %v", cfg.TTL)
	}
	if cfg.TokenBytes != 48 {
		t.Fatalf("token bytes mismatch: %d", cfg.TokenBytes)
	}
	if cfg.OpTimeout != 500*time.Millisecond {
		t.Fatalf("op timeout mismatch: %v", cfg.OpTimeout)
	}
}
