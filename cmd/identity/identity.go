package identity

import (
	"strings"
)

// Role distinguishes the two principal kinds sharing one session namespace.
type Role string

const (
	// RoleStudent is a student identified by USN, authenticated by date of birth.
	RoleStudent Role = "student"
	// RoleProctor is a proctor identified by proctor-id, authenticated by password.
	RoleProctor Role = "proctor"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleProctor:
		return RoleProctor, nil
	default:
		return "", OpError{Op: "identity.ParseRole", Kind: ErrInvalidInput, Msg: "unknown role"}
	}
}

// Identity is a role-tagged principal: a role plus its natural key
// (USN for students, proctor-id for proctors), case-normalized to uppercase.
type Identity struct {
	Role       Role
	NaturalKey string
}

// New builds an Identity with a normalized natural key.
func New(role Role, naturalKey string) Identity {
	return Identity{Role: role, NaturalKey: NormalizeNaturalKey(naturalKey)}
}

// Key serializes the identity into the single session-cache key space,
// e.g. "student:1MS24IS400". The same string is the reverse key and the
// forward-key value, so both roles share one cache schema.
func (id Identity) Key() string {
	return string(id.Role) + ":" + id.NaturalKey
}

// Parse decodes a serialized identity ("role:naturalKey").
func Parse(s string) (Identity, error) {
	const op = "identity.Parse"

	role, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Identity{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing role separator"}
	}

	r, err := ParseRole(role)
	if err != nil {
		return Identity{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown role"}
	}

	key := NormalizeNaturalKey(rest)
	if key == "" {
		return Identity{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty natural key"}
	}

	return Identity{Role: r, NaturalKey: key}, nil
}

// NormalizeNaturalKey performs case-insensitive canonicalization.
// Natural keys (USNs, proctor-ids) are stored and compared uppercase.
func NormalizeNaturalKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
