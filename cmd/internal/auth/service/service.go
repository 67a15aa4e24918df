package authsvc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"acadport/cmd/identity"
	"acadport/cmd/internal/auth/session"
	"acadport/cmd/internal/metrics"
	"acadport/cmd/security/password"
)

// Service implements the register/login/logout/profile flows.
type Service struct {
	log      *slog.Logger
	store    identity.Store
	sessions *session.Manager
	pw       password.Config
	metrics  *metrics.Metrics

	// dummyHash absorbs a bcrypt compare when the proctor lookup
	// misses, keeping login latency flat across the two failure modes.
	dummyHash string

	now func() time.Time
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics attaches the portal collectors. Nil metrics are a no-op.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPasswordConfig overrides the default hashing policy.
func WithPasswordConfig(cfg password.Config) Option {
	return func(s *Service) { s.pw = cfg }
}

// New constructs a Service over a credential store and session manager.
func New(store identity.Store, sessions *session.Manager, opts ...Option) *Service {
	s := &Service{
		log:      slog.Default(),
		store:    store,
		sessions: sessions,
		pw:       password.DefaultConfig(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if hash, err := s.pw.Hash("dummy-password-for-timing-only"); err == nil {
		s.dummyHash = hash
	}
	return s
}

// RegisterInput describes a registration request for either role.
// DisplayName applies to proctors only.
type RegisterInput struct {
	Role        identity.Role
	NaturalKey  string
	Secret      string
	DisplayName string
}

// Grant is a successful authentication result: the identity plus the
// session token that now represents it.
type Grant struct {
	Identity identity.Identity
	Token    string
}

// Profile is an identity record with the credential stripped.
type Profile struct {
	Role        identity.Role
	NaturalKey  string
	DisplayName string
	CreatedAt   time.Time
}

func conflictField(role identity.Role) string {
	if role == identity.RoleProctor {
		return "proctor_id"
	}
	return "usn"
}

// Register creates a new identity record and issues its first session.
//
// Proctor secrets are hashed before storage; student dates of birth are
// stored as-is because they are the shared secret, not a password.
// A natural key already registered for the role fails with a conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Grant, error) {
	const op = "authsvc.Register"

	role, key, secret, err := normalizeCredentials(op, in.Role, in.NaturalKey, in.Secret)
	if err != nil {
		return Grant{}, err
	}

	if _, err := s.store.FindByNaturalKey(ctx, role, key); err == nil {
		s.observe("register", role, metrics.OutcomeConflict)
		return Grant{}, identity.ConflictError{Op: op, Field: conflictField(role)}
	} else if !identity.IsNotFound(err) {
		s.observe("register", role, metrics.OutcomeError)
		return Grant{}, err
	}

	stored := secret
	if role == identity.RoleProctor {
		hash, err := s.pw.Hash(secret)
		if err != nil {
			if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
				return Grant{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: err.Error()}
			}
			return Grant{}, err
		}
		stored = hash
	}

	rec, err := s.store.Create(ctx, identity.CreateInput{
		Role:        role,
		NaturalKey:  key,
		Secret:      stored,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Now:         s.now(),
	})
	if err != nil {
		if identity.IsConflict(err) {
			s.observe("register", role, metrics.OutcomeConflict)
		} else {
			s.observe("register", role, metrics.OutcomeError)
		}
		return Grant{}, err
	}

	tok, err := s.sessions.Issue(ctx, rec.Identity())
	if err != nil {
		s.observe("register", role, metrics.OutcomeError)
		return Grant{}, err
	}

	s.observe("register", role, metrics.OutcomeOK)
	s.log.InfoContext(ctx, "auth.register.ok",
		slog.String("role", string(role)),
		slog.String("natural_key", key))
	return Grant{Identity: rec.Identity(), Token: tok}, nil
}

// Login authenticates an existing identity and issues (or reuses) its
// session. Unknown identities fail not-found; a known identity with a
// wrong secret fails ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, role identity.Role, naturalKey, secret string) (Grant, error) {
	const op = "authsvc.Login"

	role, key, secret, err := normalizeCredentials(op, role, naturalKey, secret)
	if err != nil {
		return Grant{}, err
	}

	rec, err := s.store.FindByNaturalKey(ctx, role, key)
	if err != nil {
		if identity.IsNotFound(err) {
			if role == identity.RoleProctor && s.dummyHash != "" {
				_, _ = s.pw.Verify(secret, s.dummyHash)
			}
			s.observe("login", role, metrics.OutcomeNotFound)
			s.log.InfoContext(ctx, "auth.login.fail",
				slog.String("role", string(role)),
				slog.String("natural_key", key),
				slog.String("reason", "not_found"))
			return Grant{}, err
		}
		s.observe("login", role, metrics.OutcomeError)
		return Grant{}, err
	}

	// Students present their date of birth; the verifier's legacy path
	// gives the direct equality check in constant time. Proctors go
	// through the same verifier, which picks bcrypt for hashed rows.
	ok, err := s.pw.Verify(secret, rec.Secret)
	if err != nil {
		s.observe("login", role, metrics.OutcomeError)
		return Grant{}, err
	}
	if !ok {
		s.observe("login", role, metrics.OutcomeInvalidCredentials)
		s.log.InfoContext(ctx, "auth.login.fail",
			slog.String("role", string(role)),
			slog.String("natural_key", key),
			slog.String("reason", "bad_secret"))
		return Grant{}, ErrInvalidCredentials
	}

	tok, err := s.sessions.Issue(ctx, rec.Identity())
	if err != nil {
		s.observe("login", role, metrics.OutcomeError)
		return Grant{}, err
	}

	s.observe("login", role, metrics.OutcomeOK)
	s.log.InfoContext(ctx, "auth.login.ok",
		slog.String("role", string(role)),
		slog.String("natural_key", key))
	return Grant{Identity: rec.Identity(), Token: tok}, nil
}

// Logout revokes the session behind a token. Tokens that no longer
// resolve are tolerated, so repeated logouts succeed.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// GetProfile resolves a token and returns the identity record with the
// credential stripped. An invalid token fails ErrInvalidSession; a
// resolvable token whose record has vanished from the store fails
// not-found.
func (s *Service) GetProfile(ctx context.Context, token string) (Profile, error) {
	id, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return Profile{}, err
	}

	rec, err := s.store.FindByNaturalKey(ctx, id.Role, id.NaturalKey)
	if err != nil {
		if identity.IsNotFound(err) {
			s.log.WarnContext(ctx, "auth.profile.drift",
				slog.String("identity", id.Key()))
		}
		return Profile{}, err
	}

	return Profile{
		Role:        rec.Role,
		NaturalKey:  rec.NaturalKey,
		DisplayName: rec.DisplayName,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

func (s *Service) observe(op string, role identity.Role, outcome string) {
	s.metrics.ObserveAuth(op, string(role), outcome)
}

func normalizeCredentials(op string, role identity.Role, naturalKey, secret string) (identity.Role, string, string, error) {
	if role != identity.RoleStudent && role != identity.RoleProctor {
		return "", "", "", identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "unknown role"}
	}
	key := identity.NormalizeNaturalKey(naturalKey)
	if key == "" {
		return "", "", "", identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "natural key is required"}
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", "", "", identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "secret is required"}
	}
	return role, key, secret, nil
}
