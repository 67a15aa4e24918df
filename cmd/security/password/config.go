package password

import (
	"os"
	"strconv"
	"strings"
)

// Environment overrides:
//   - ACADPORT_BCRYPT_COST (4..31)
//   - ACADPORT_PASSWORD_MIN_LENGTH
//
// Invalid values fall back to defaults; configuration must never weaken
// the baseline length policy below 8.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("ACADPORT_BCRYPT_COST")); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 4 && n <= 31 {
			cfg.Cost = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("ACADPORT_PASSWORD_MIN_LENGTH")); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 8 && n <= cfg.MaxLength {
			cfg.MinLength = n
		}
	}

	return cfg
}
