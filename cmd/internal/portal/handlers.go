package portal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"acadport/cmd/identity"
	authapi "acadport/cmd/internal/auth/api"
	"acadport/cmd/internal/report"
)

// RemarkClient is the report-service surface the portal needs.
type RemarkClient interface {
	GenerateRemark(ctx context.Context, usn string) (report.Remark, error)
}

// Handler serves the authenticated portal routes.
type Handler struct {
	log     *slog.Logger
	roster  RosterStore
	reports RemarkClient
}

// NewHandler constructs a portal Handler. A nil reports client makes
// the report route answer 503 (dev mode without the report service).
func NewHandler(log *slog.Logger, roster RosterStore, reports RemarkClient) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, roster: roster, reports: reports}
}

// Register wires portal routes onto the mux, each behind the session
// middleware.
func (h *Handler) Register(mux *http.ServeMux, requireSession func(http.Handler) http.Handler) {
	if h == nil || mux == nil || requireSession == nil {
		return
	}
	mux.Handle("GET /proctor/{proctorID}/proctees", requireSession(http.HandlerFunc(h.handleProctees)))
	mux.Handle("GET /proctor/{proctorID}/proctee/{usn}", requireSession(http.HandlerFunc(h.handleProcteeDetail)))
	mux.Handle("GET /report/{usn}", requireSession(http.HandlerFunc(h.handleReport)))
}

type procteesResponse struct {
	Proctees []Proctee `json:"proctees"`
}

// requireProctorSelf enforces that the caller is a proctor acting on
// their own roster.
func (h *Handler) requireProctorSelf(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := authapi.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
		return "", false
	}

	proctorID := identity.NormalizeNaturalKey(r.PathValue("proctorID"))
	if id.Role != identity.RoleProctor || id.NaturalKey != proctorID {
		writeError(w, http.StatusForbidden, "forbidden", "you can only view your own proctees")
		return "", false
	}
	return proctorID, true
}

func (h *Handler) handleProctees(w http.ResponseWriter, r *http.Request) {
	proctorID, ok := h.requireProctorSelf(w, r)
	if !ok {
		return
	}

	proctees, err := h.roster.ListProctees(r.Context(), proctorID)
	if err != nil {
		h.writeRosterError(w, "portal.proctees", err)
		return
	}
	if proctees == nil {
		proctees = []Proctee{}
	}

	writeJSON(w, http.StatusOK, procteesResponse{Proctees: proctees})
}

func (h *Handler) handleProcteeDetail(w http.ResponseWriter, r *http.Request) {
	proctorID, ok := h.requireProctorSelf(w, r)
	if !ok {
		return
	}

	proctee, err := h.roster.GetProctee(r.Context(), proctorID, r.PathValue("usn"))
	if err != nil {
		h.writeRosterError(w, "portal.proctee", err)
		return
	}

	writeJSON(w, http.StatusOK, proctee)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := authapi.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
		return
	}

	usn := identity.NormalizeNaturalKey(r.PathValue("usn"))

	// Students fetch their own report; proctors only reports of
	// students on their roster.
	switch id.Role {
	case identity.RoleStudent:
		if id.NaturalKey != usn {
			writeError(w, http.StatusForbidden, "forbidden", "you can only view your own report")
			return
		}
	case identity.RoleProctor:
		if _, err := h.roster.GetProctee(r.Context(), id.NaturalKey, usn); err != nil {
			if errors.Is(err, ErrNotAssigned) || errors.Is(err, ErrProctorNotFound) {
				writeError(w, http.StatusForbidden, "forbidden", "this student is not assigned to you")
				return
			}
			h.writeRosterError(w, "portal.report", err)
			return
		}
	default:
		writeError(w, http.StatusForbidden, "forbidden", "access denied")
		return
	}

	if h.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report_unavailable", "report service not configured")
		return
	}

	remark, err := h.reports.GenerateRemark(r.Context(), usn)
	if err != nil {
		var ue report.UpstreamError
		switch {
		case errors.As(err, &ue):
			// Forward the report service's own verdict.
			writeError(w, ue.Status, "report_failed", ue.Detail)
		case errors.Is(err, report.ErrUnavailable):
			h.log.Error("portal.report.unreachable", "err", err)
			writeError(w, http.StatusBadGateway, "report_unavailable", "report service unreachable")
		default:
			h.log.Error("portal.report.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, remark)
}

func (h *Handler) writeRosterError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrProctorNotFound):
		writeError(w, http.StatusNotFound, "not_found", "proctor not found")
	case errors.Is(err, ErrNotAssigned):
		writeError(w, http.StatusForbidden, "forbidden", "this student is not assigned to you")
	default:
		h.log.Error(op+".fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// ---- json helpers ----

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: msg}})
}
