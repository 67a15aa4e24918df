package portal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"acadport/cmd/identity"
	authapi "acadport/cmd/internal/auth/api"
	"acadport/cmd/internal/auth/session"
	"acadport/cmd/internal/report"
)

type fakeRemarkClient struct {
	remark  report.Remark
	err     error
	lastUSN string
}

func (f *fakeRemarkClient) GenerateRemark(_ context.Context, usn string) (report.Remark, error) {
	f.lastUSN = usn
	if f.err != nil {
		return report.Remark{}, f.err
	}
	return f.remark, nil
}

type testPortal struct {
	mux      *http.ServeMux
	sessions *session.Manager
	roster   *MemoryRosterStore
	reports  *fakeRemarkClient
}

func newTestPortal(t *testing.T) *testPortal {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager(session.DefaultConfig(), session.NewMemoryCache(),
		session.WithLogger(log))
	auth := authapi.NewHandler(log, authapi.Config{MaxBodyBytes: 1 << 20}, nil, sessions)

	roster := NewMemoryRosterStore()
	roster.Assign("P000", "1MS23IS051")
	roster.Assign("P000", "1MS24IS400")

	reports := &fakeRemarkClient{
		remark: report.Remark{AIRemark: "Solid semester overall."},
	}

	h := NewHandler(log, roster, reports)
	mux := http.NewServeMux()
	h.Register(mux, auth.RequireSession)

	return &testPortal{mux: mux, sessions: sessions, roster: roster, reports: reports}
}

func (p *testPortal) token(t *testing.T, role identity.Role, key string) string {
	t.Helper()
	tok, err := p.sessions.Issue(context.Background(), identity.New(role, key))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func (p *testPortal) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(authapi.SessionHeader, token)
	}
	rec := httptest.NewRecorder()
	p.mux.ServeHTTP(rec, req)
	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error.Code
}

func TestProctees_OwnRoster(t *testing.T) {
	t.Parallel()

	p := newTestPortal(t)
	tok := p.token(t, identity.RoleProctor, "P000")

	rec := p.get(t, "/proctor/P000/proctees", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d %s", rec.Code, rec.Body.String())
	}

	var resp procteesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Proctees) != 2 {
		t.Fatalf("proctees: %+v", resp.Proctees)
	}
	if resp.Proctees[0].USN != "1MS23IS051" || resp.Proctees[1].USN != "1MS24IS400" {
		t.Fatalf("roster order: %+v", resp.Proctees)
	}
}

func TestProctees_OwnershipChecks(t *testing.T) {
	t.Parallel()

	p := newTestPortal(t)

	// Another proctor's roster is off limits.
	p.roster.AddProctor("P111")
	other := p.token(t, identity.RoleProctor, "P111")
	if rec := p.get(t, "/proctor/P000/proctees", other); rec.Code != http.StatusForbidden {
		t.Fatalf("cross-proctor access: %d", rec.Code)
	}

	// Students cannot use the proctor surface at all.
	student := p.token(t, identity.RoleStudent, "1MS23IS051")
	if rec := p.get(t, "/proctor/P000/proctees", student); rec.Code != http.StatusForbidden {
		t.Fatalf("student access: %d", rec.Code)
	}

	// No token at all.
	rec := p.get(t, "/proctor/P000/proctees", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous access: %d", rec.Code)
	}
	if code := errCode(t, rec); code != "no_session" {
		t.Fatalf("error code: %q", code)
	}
}

func TestProcteeDetail(t *testing.T) {
	t.Parallel()

	p := newTestPortal(t)
	tok := p.token(t, identity.RoleProctor, "P000")

	rec := p.get(t, "/proctor/P000/proctee/1ms23is051", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d %s", rec.Code, rec.Body.String())
	}
	var proctee Proctee
	if err := json.Unmarshal(rec.Body.Bytes(), &proctee); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if proctee.USN != "1MS23IS051" {
		t.Fatalf("proctee: %+v", proctee)
	}

	// A student not on the roster is indistinguishable from one that
	// does not exist.
	if rec := p.get(t, "/proctor/P000/proctee/1MS99IS999", tok); rec.Code != http.StatusForbidden {
		t.Fatalf("unassigned student: %d", rec.Code)
	}

	// A proctor with a session but no roster row.
	ghost := p.token(t, identity.RoleProctor, "P404")
	if rec := p.get(t, "/proctor/P404/proctee/1MS23IS051", ghost); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown proctor: %d", rec.Code)
	}
}

func TestReport_Ownership(t *testing.T) {
	t.Parallel()

	p := newTestPortal(t)

	student := p.token(t, identity.RoleStudent, "1MS24IS400")
	rec := p.get(t, "/report/1MS24IS400", student)
	if rec.Code != http.StatusOK {
		t.Fatalf("own report: %d %s", rec.Code, rec.Body.String())
	}
	if p.reports.lastUSN != "1MS24IS400" {
		t.Fatalf("report requested for %q", p.reports.lastUSN)
	}

	if rec := p.get(t, "/report/1MS23IS051", student); rec.Code != http.StatusForbidden {
		t.Fatalf("another student's report: %d", rec.Code)
	}

	proctor := p.token(t, identity.RoleProctor, "P000")
	if rec := p.get(t, "/report/1MS23IS051", proctor); rec.Code != http.StatusOK {
		t.Fatalf("assigned proctee report: %d", rec.Code)
	}
	if rec := p.get(t, "/report/1MS99IS999", proctor); rec.Code != http.StatusForbidden {
		t.Fatalf("unassigned proctee report: %d", rec.Code)
	}
}

func TestReport_UpstreamFailures(t *testing.T) {
	t.Parallel()

	p := newTestPortal(t)
	student := p.token(t, identity.RoleStudent, "1MS24IS400")

	p.reports.err = report.UpstreamError{Status: http.StatusBadRequest, Detail: "Marks data required"}
	rec := p.get(t, "/report/1MS24IS400", student)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("upstream 400 not forwarded: %d", rec.Code)
	}

	p.reports.err = report.ErrUnavailable
	if rec := p.get(t, "/report/1MS24IS400", student); rec.Code != http.StatusBadGateway {
		t.Fatalf("unreachable service: %d", rec.Code)
	}
}

func TestReport_NoClientConfigured(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager(session.DefaultConfig(), session.NewMemoryCache(),
		session.WithLogger(log))
	auth := authapi.NewHandler(log, authapi.Config{MaxBodyBytes: 1 << 20}, nil, sessions)

	h := NewHandler(log, NewMemoryRosterStore(), nil)
	mux := http.NewServeMux()
	h.Register(mux, auth.RequireSession)

	tok, err := sessions.Issue(context.Background(), identity.New(identity.RoleStudent, "1MS24IS400"))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/report/1MS24IS400", nil)
	req.Header.Set(authapi.SessionHeader, tok)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", rec.Code)
	}
}
