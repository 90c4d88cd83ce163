package api

import (
	"log/slog"
	"net/http"

	"github.com/stridelog/tracker-engine/internal/auth"
)

// SessionMiddleware resolves the session cookie to a user ID and rejects
// requests without a live session.
type SessionMiddleware struct {
	auth *auth.Service
}

// NewSessionMiddleware creates the session gate.
func NewSessionMiddleware(authSvc *auth.Service) *SessionMiddleware {
	return &SessionMiddleware{auth: authSvc}
}

// Require authenticates the request via the session cookie.
func (m *SessionMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.auth.CookieName())
		if err != nil || cookie.Value == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to continue")
			return
		}

		userID, err := m.auth.Resolve(r.Context(), cookie.Value)
		if err != nil {
			slog.Error("failed to resolve session", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "authentication error")
			return
		}
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "session_expired", "session expired, sign in again")
			return
		}

		ctx := ContextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
