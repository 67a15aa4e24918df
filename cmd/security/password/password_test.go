package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify_Bcrypt(t *testing.T) {
	t.Parallel()

	cfg := Config{Cost: bcrypt.MinCost, MinLength: 8, MaxLength: 72}

	hash, err := cfg.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !IsHashed(hash) {
		t.Fatalf("hash missing bcrypt prefix: %q", hash)
	}

	ok, err := cfg.Verify("password123", hash)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}

	ok, err = cfg.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify mismatch: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestVerify_LegacyPlaintext(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	cases := []struct {
		presented string
		stored    string
		want      bool
	}{
		{presented: "secret", stored: "secret", want: true},
		{presented: "secret", stored: "other", want: false},
		{presented: "2005-10-20", stored: "2005-10-20", want: true},
		{presented: "2005-10-21", stored: "2005-10-20", want: false},
		{presented: "", stored: "", want: false},
		{presented: "anything", stored: "", want: false},
	}

	for _, tc := range cases {
		got, err := cfg.Verify(tc.presented, tc.stored)
		if err != nil {
			t.Fatalf("Verify(%q, %q): %v", tc.presented, tc.stored, err)
		}
		if got != tc.want {
			t.Fatalf("Verify(%q, %q)=%v want=%v", tc.presented, tc.stored, got, tc.want)
		}
	}
}

func TestVerify_MalformedHashIsNonMatch(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	// A value with a bcrypt prefix but garbage payload must fail closed,
	// not error or fall back to plaintext comparison.
	stored := "$2a$10$not-a-real-bcrypt-payload"
	ok, err := cfg.Verify(stored, stored)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("malformed hash must never match")
	}
}

func TestHash_LengthPolicy(t *testing.T) {
	t.Parallel()

	cfg := Config{Cost: bcrypt.MinCost, MinLength: 8, MaxLength: 72}

	if _, err := cfg.Hash("short"); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if _, err := cfg.Hash(strings.Repeat("x", 73)); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestIsHashed_Prefixes(t *testing.T) {
	t.Parallel()

	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if !IsHashed(prefix + "10$xyz") {
			t.Fatalf("prefix %q not recognized", prefix)
		}
	}
	if IsHashed("2005-10-20") {
		t.Fatalf("plain date misclassified as hash")
	}
	if IsHashed("$argon2id$v=19$...") {
		t.Fatalf("non-bcrypt PHC string misclassified")
	}
}
