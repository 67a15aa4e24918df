package authapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"acadport/cmd/identity"
	"acadport/cmd/internal/auth/session"
)

type identityCtxKey struct{}

// IdentityFromContext returns the identity attached by RequireSession.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(identity.Identity)
	return id, ok
}

// RequireSession verifies the session token on every request before
// handing off to next.
//
// A missing header gets its own reason; every resolution failure maps
// to one uniform 401, so callers cannot probe whether a token is
// malformed, expired, or never existed. On success the identity rides
// the request context and the session TTL slides back to its full
// window, renewed off the request path.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := sessionToken(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "no_session", "no session id provided")
			return
		}

		id, err := h.sessions.Resolve(r.Context(), tok)
		if err != nil {
			if errors.Is(err, session.ErrStoreUnavailable) {
				h.log.Error("session.resolve.store.fail", "err", err)
				writeError(w, http.StatusServiceUnavailable, "store_unavailable", "please retry later")
				return
			}
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
			return
		}

		go h.renewSession(id)

		ctx := context.WithValue(r.Context(), identityCtxKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// renewSession slides the TTL best-effort. Losing a renewal only costs
// expiry accuracy, never correctness, so failures are logged and
// dropped.
func (h *Handler) renewSession(id identity.Identity) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.sessions.Renew(ctx, id); err != nil && !errors.Is(err, session.ErrInvalidSession) {
		h.log.Warn("session.renew.fail", "identity", id.Key(), "err", err)
	}
}
