package authsvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"acadport/cmd/identity"
	"acadport/cmd/internal/auth/session"
	"acadport/cmd/security/password"
)

func newTestService(t *testing.T) (*Service, *identity.InMemoryStore, *session.Manager) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := identity.NewInMemoryStore()
	sessions := session.NewManager(session.DefaultConfig(), session.NewMemoryCache(),
		session.WithLogger(log))

	svc := New(store, sessions,
		WithLogger(log),
		WithPasswordConfig(password.Config{Cost: bcrypt.MinCost, MinLength: 8, MaxLength: 72}))
	return svc, store, sessions
}

func TestStudentLifecycle(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{
		Role:       identity.RoleStudent,
		NaturalKey: "1ms24is400",
		Secret:     "2005-10-20",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if first.Identity.NaturalKey != "1MS24IS400" {
		t.Fatalf("natural key not normalized: %q", first.Identity.NaturalKey)
	}
	if first.Token == "" {
		t.Fatalf("no token issued on register")
	}

	// Logging in again with the same credentials reuses the session.
	again, err := svc.Login(ctx, identity.RoleStudent, "1MS24IS400", "2005-10-20")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if again.Token != first.Token {
		t.Fatalf("re-login minted a new token")
	}

	if err := svc.Logout(ctx, first.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.GetProfile(ctx, first.Token); !errors.Is(err, session.ErrInvalidSession) {
		t.Fatalf("profile after logout: %v", err)
	}

	// Logout is idempotent.
	if err := svc.Logout(ctx, first.Token); err != nil {
		t.Fatalf("second Logout: %v", err)
	}

	relogin, err := svc.Login(ctx, identity.RoleStudent, "1MS24IS400", "2005-10-20")
	if err != nil {
		t.Fatalf("re-login: %v", err)
	}
	if relogin.Token == first.Token {
		t.Fatalf("revoked token was reissued")
	}
}

func TestStudentLogin_WrongDOB(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Role:       identity.RoleStudent,
		NaturalKey: "1MS23IS051",
		Secret:     "2004-11-19",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(ctx, identity.RoleStudent, "1MS23IS051", "2004-11-20")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong dob: %v", err)
	}
}

func TestProctorLogin(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{
		Role:        identity.RoleProctor,
		NaturalKey:  "p000",
		Secret:      "password123",
		DisplayName: "Default Proctor",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Identity.NaturalKey != "P000" {
		t.Fatalf("natural key not normalized: %q", reg.Identity.NaturalKey)
	}

	// The stored credential must be hashed, never the plain password.
	rec, err := store.FindByNaturalKey(ctx, identity.RoleProctor, "P000")
	if err != nil {
		t.Fatalf("FindByNaturalKey: %v", err)
	}
	if !password.IsHashed(rec.Secret) {
		t.Fatalf("proctor secret stored unhashed")
	}

	if _, err := svc.Login(ctx, identity.RoleProctor, "P000", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Login(ctx, identity.RoleProctor, "P000", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, identity.RoleProctor, "P999", "password123"); !identity.IsNotFound(err) {
		t.Fatalf("unknown proctor: %v", err)
	}
}

func TestProctorLogin_LegacyPlaintextRow(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// A pre-migration row holds the password in plaintext. Login must
	// still work through the verifier's legacy path.
	if _, err := store.Create(ctx, identity.CreateInput{
		Role:        identity.RoleProctor,
		NaturalKey:  "P001",
		Secret:      "legacy-password",
		DisplayName: "Legacy Proctor",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Login(ctx, identity.RoleProctor, "P001", "legacy-password"); err != nil {
		t.Fatalf("legacy login: %v", err)
	}
	if _, err := svc.Login(ctx, identity.RoleProctor, "P001", "other"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("legacy wrong password: %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := RegisterInput{
		Role:       identity.RoleStudent,
		NaturalKey: "1MS24IS400",
		Secret:     "2005-10-20",
	}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	// Same USN in different case is still a duplicate.
	in.NaturalKey = "1ms24is400"
	if _, err := svc.Register(ctx, in); !identity.IsConflict(err) {
		t.Fatalf("duplicate register: %v", err)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Role: identity.RoleStudent, NaturalKey: "", Secret: "2005-10-20"},
		{Role: identity.RoleStudent, NaturalKey: "1MS24IS400", Secret: "   "},
		{Role: "admin", NaturalKey: "X", Secret: "y"},
		{Role: identity.RoleProctor, NaturalKey: "P000", Secret: "short"},
	}
	for _, in := range cases {
		if _, err := svc.Register(ctx, in); !identity.IsInvalidInput(err) {
			t.Fatalf("Register(%+v): %v", in, err)
		}
	}
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{
		Role:        identity.RoleProctor,
		NaturalKey:  "P000",
		Secret:      "password123",
		DisplayName: "Default Proctor",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	profile, err := svc.GetProfile(ctx, reg.Token)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Role != identity.RoleProctor || profile.NaturalKey != "P000" {
		t.Fatalf("profile identity mismatch: %+v", profile)
	}
	if profile.DisplayName != "Default Proctor" {
		t.Fatalf("display name mismatch: %q", profile.DisplayName)
	}

	if _, err := svc.GetProfile(ctx, "not-a-token"); !errors.Is(err, session.ErrInvalidSession) {
		t.Fatalf("invalid token: %v", err)
	}
}

func TestGetProfile_StoreDrift(t *testing.T) {
	t.Parallel()

	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	// A live session whose record never made it to the store.
	ghost := identity.New(identity.RoleStudent, "1MS99IS999")
	tok, err := sessions.Issue(ctx, ghost)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.GetProfile(ctx, tok); !identity.IsNotFound(err) {
		t.Fatalf("drifted profile: %v", err)
	}
}
