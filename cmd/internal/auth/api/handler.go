package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"acadport/cmd/identity"
	authsvc "acadport/cmd/internal/auth/service"
	"acadport/cmd/internal/auth/session"
)

// Handler wires the HTTP auth endpoints to the authentication service.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	svc      *authsvc.Service
	sessions *session.Manager
	throttle *loginThrottle
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, svc *authsvc.Service, sessions *session.Manager) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		svc:      svc,
		sessions: sessions,
		throttle: newLoginThrottle(cfg.LoginMax, cfg.LoginWindow),
	}
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/student/register", h.handleStudentRegister)
	mux.HandleFunc("/auth/student/login", h.handleStudentLogin)
	mux.HandleFunc("/auth/proctor/register", h.handleProctorRegister)
	mux.HandleFunc("/auth/proctor/login", h.handleProctorLogin)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/auth/profile", h.handleProfile)
}

// ---- handlers ----

func (h *Handler) handleStudentRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req studentRegisterRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	grant, err := h.svc.Register(r.Context(), authsvc.RegisterInput{
		Role:       identity.RoleStudent,
		NaturalKey: req.USN,
		Secret:     req.DOB,
	})
	if err != nil {
		h.writeServiceError(w, "auth.student.register", err)
		return
	}

	writeJSON(w, http.StatusCreated, studentAuthResponse{
		USN:       grant.Identity.NaturalKey,
		SessionID: grant.Token,
	})
}

func (h *Handler) handleStudentLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req studentLoginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	key := identity.New(identity.RoleStudent, req.USN).Key()
	if blocked, retryAfter := h.throttle.blocked(key); blocked {
		writeRateLimited(w, retryAfter)
		return
	}

	grant, err := h.svc.Login(r.Context(), identity.RoleStudent, req.USN, req.DOB)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) || identity.IsNotFound(err) {
			h.throttle.recordFailure(key)
		}
		h.writeServiceError(w, "auth.student.login", err)
		return
	}
	h.throttle.reset(key)

	writeJSON(w, http.StatusOK, studentAuthResponse{
		USN:       grant.Identity.NaturalKey,
		SessionID: grant.Token,
	})
}

func (h *Handler) handleProctorRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req proctorRegisterRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	grant, err := h.svc.Register(r.Context(), authsvc.RegisterInput{
		Role:        identity.RoleProctor,
		NaturalKey:  req.ProctorID,
		Secret:      req.Password,
		DisplayName: req.Name,
	})
	if err != nil {
		h.writeServiceError(w, "auth.proctor.register", err)
		return
	}

	writeJSON(w, http.StatusCreated, proctorAuthResponse{
		ProctorID: grant.Identity.NaturalKey,
		SessionID: grant.Token,
	})
}

func (h *Handler) handleProctorLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req proctorLoginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	key := identity.New(identity.RoleProctor, req.ProctorID).Key()
	if blocked, retryAfter := h.throttle.blocked(key); blocked {
		writeRateLimited(w, retryAfter)
		return
	}

	grant, err := h.svc.Login(r.Context(), identity.RoleProctor, req.ProctorID, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) || identity.IsNotFound(err) {
			h.throttle.recordFailure(key)
		}
		h.writeServiceError(w, "auth.proctor.login", err)
		return
	}
	h.throttle.reset(key)

	writeJSON(w, http.StatusOK, proctorAuthResponse{
		ProctorID: grant.Identity.NaturalKey,
		SessionID: grant.Token,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tok := sessionToken(r)
	if tok == "" {
		writeError(w, http.StatusUnauthorized, "no_session", "no session id provided")
		return
	}

	if err := h.svc.Logout(r.Context(), tok); err != nil {
		h.writeServiceError(w, "auth.logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tok := sessionToken(r)
	if tok == "" {
		writeError(w, http.StatusUnauthorized, "no_session", "no session id provided")
		return
	}

	profile, err := h.svc.GetProfile(r.Context(), tok)
	if err != nil {
		h.writeServiceError(w, "auth.profile", err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Role:        string(profile.Role),
		NaturalKey:  profile.NaturalKey,
		DisplayName: profile.DisplayName,
		CreatedAt:   profile.CreatedAt,
	})
}

// ---- helpers ----

func sessionToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

// writeServiceError maps service errors onto the wire contract:
// 400 invalid input, 401 bad credentials or session, 404 unknown
// identity, 409 duplicate registration, 503 session store down.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case identity.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
	case identity.IsConflict(err):
		writeError(w, http.StatusConflict, "already_exists", "identity already registered")
	case identity.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", "identity not found")
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, session.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
	case errors.Is(err, session.ErrStoreUnavailable):
		h.log.Error(op+".store.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "please retry later")
	default:
		h.log.Error(op+".fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
