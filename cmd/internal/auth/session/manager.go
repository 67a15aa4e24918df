package session

import (
	"context"
	"errors"
	"log/slog"

	"acadport/cmd/identity"
	"acadport/cmd/security/token"
)

// forwardPrefix namespaces forward keys in the shared cache. Reverse
// keys need no prefix because identity keys carry their own role
// prefix ("student:..." / "proctor:...").
const forwardPrefix = "session:"

func forwardKey(tok string) string { return forwardPrefix + tok }

// Manager implements the session lifecycle over a Cache.
//
// A live session is the pair
//
//	session:{token}        -> {role}:{naturalKey}
//	{role}:{naturalKey}    -> {token}
//
// written with identical TTLs. Issue maintains the pair as a bijection:
// a second login for the same identity returns the existing token, and
// minting a fresh token always starts from a state with no live
// forward key for that identity.
type Manager struct {
	cfg   Config
	cache Cache
	log   *slog.Logger

	// onSelfHeal fires when Issue discards a stale reverse key.
	onSelfHeal func()
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithSelfHealHook registers a callback invoked once per discarded
// stale reverse key. Used to feed the self-heal counter.
func WithSelfHealHook(fn func()) Option {
	return func(m *Manager) { m.onSelfHeal = fn }
}

// NewManager constructs a Manager. A zero-value Config is replaced by
// DefaultConfig.
func NewManager(cfg Config, cache Cache, opts ...Option) *Manager {
	if cfg.TTL <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.TokenBytes < token.MinBytes {
		cfg.TokenBytes = token.DefaultBytes
	}

	m := &Manager{cfg: cfg, cache: cache, log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue returns a live token for the identity, reusing the existing
// session when one is still valid and minting a fresh pair otherwise.
// Either way both keys leave with the full TTL.
//
// When the reverse key points at a token whose forward key has already
// expired, the stale reverse entry is discarded and a fresh pair is
// minted. That is the only repair path; no background sweeper exists.
func (m *Manager) Issue(ctx context.Context, id identity.Identity) (string, error) {
	reverse := id.Key()

	existing, err := m.cache.Get(ctx, reverse)
	switch {
	case err == nil:
		held, ferr := m.cache.Get(ctx, forwardKey(existing))
		if ferr == nil && held == reverse {
			// Live pair. Reset both TTLs to the full window.
			if err := m.renewPair(ctx, reverse, existing); err != nil {
				return "", err
			}
			return existing, nil
		}
		if ferr != nil && !errors.Is(ferr, ErrCacheMiss) {
			return "", ferr
		}
		// Stale reverse key: the forward half expired, or holds a
		// different identity. Discard and mint.
		m.log.WarnContext(ctx, "session.selfheal",
			slog.String("identity", reverse))
		if m.onSelfHeal != nil {
			m.onSelfHeal()
		}
		if err := m.cache.Delete(ctx, reverse); err != nil {
			return "", err
		}
	case errors.Is(err, ErrCacheMiss):
		// No session. Mint below.
	default:
		return "", err
	}

	return m.mint(ctx, id)
}

// mint creates a fresh pair. The reverse key is written first so a
// failure between the two writes leaves only a reverse entry pointing
// at a dead token, which the next Issue discards.
func (m *Manager) mint(ctx context.Context, id identity.Identity) (string, error) {
	tok, err := token.NewOpaque(m.cfg.TokenBytes)
	if err != nil {
		return "", err
	}

	reverse := id.Key()
	if err := m.cache.SetTTL(ctx, reverse, tok, m.cfg.TTL); err != nil {
		return "", err
	}
	if err := m.cache.SetTTL(ctx, forwardKey(tok), reverse, m.cfg.TTL); err != nil {
		return "", err
	}

	m.log.InfoContext(ctx, "session.issue",
		slog.String("identity", reverse))
	return tok, nil
}

// renewPair resets both TTLs via SetTTL, which also rewrites the
// values. Rewriting is deliberate: it repairs any value drift in the
// same pass.
func (m *Manager) renewPair(ctx context.Context, reverse, tok string) error {
	if err := m.cache.SetTTL(ctx, reverse, tok, m.cfg.TTL); err != nil {
		return err
	}
	return m.cache.SetTTL(ctx, forwardKey(tok), reverse, m.cfg.TTL)
}

// Resolve maps a token to its identity. Absent, expired, and malformed
// tokens all come back as ErrInvalidSession.
func (m *Manager) Resolve(ctx context.Context, tok string) (identity.Identity, error) {
	if tok == "" {
		return identity.Identity{}, ErrInvalidSession
	}

	val, err := m.cache.Get(ctx, forwardKey(tok))
	if errors.Is(err, ErrCacheMiss) {
		return identity.Identity{}, ErrInvalidSession
	}
	if err != nil {
		return identity.Identity{}, err
	}

	id, err := identity.Parse(val)
	if err != nil {
		// A forward entry that does not parse is corrupt. Treat the
		// session as invalid rather than surfacing the parse error.
		m.log.ErrorContext(ctx, "session.resolve.corrupt",
			slog.String("value", val))
		return identity.Identity{}, ErrInvalidSession
	}
	return id, nil
}

// Renew slides the expiration of the identity's session back to the
// full TTL. Both keys are renewed so their lifetimes stay symmetric.
//
// Returns ErrInvalidSession when the identity holds no live session.
func (m *Manager) Renew(ctx context.Context, id identity.Identity) error {
	reverse := id.Key()

	tok, err := m.cache.Get(ctx, reverse)
	if errors.Is(err, ErrCacheMiss) {
		return ErrInvalidSession
	}
	if err != nil {
		return err
	}

	ok, err := m.cache.Expire(ctx, reverse, m.cfg.TTL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSession
	}

	ok, err = m.cache.Expire(ctx, forwardKey(tok), m.cfg.TTL)
	if err != nil {
		return err
	}
	if !ok {
		// Forward half already gone. The stale reverse key will be
		// repaired on the next Issue.
		return ErrInvalidSession
	}
	return nil
}

// Revoke tears down the session behind a token. Revoking a token that
// no longer resolves is a no-op, so logout is idempotent.
func (m *Manager) Revoke(ctx context.Context, tok string) error {
	id, err := m.Resolve(ctx, tok)
	if errors.Is(err, ErrInvalidSession) {
		return nil
	}
	if err != nil {
		return err
	}

	// One multi-key delete keeps teardown atomic on Redis.
	if err := m.cache.Delete(ctx, id.Key(), forwardKey(tok)); err != nil {
		return err
	}

	m.log.InfoContext(ctx, "session.revoke",
		slog.String("identity", id.Key()))
	return nil
}
