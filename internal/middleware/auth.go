package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/model"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "choreboard_session"

type SessionLookup interface {
	GetByToken(ctx context.Context, token string) (*model.Session, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// SessionToken returns the token from the session cookie or, failing that, an
// "Authorization: Bearer" header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAuth validates the session token and populates AuthContext.
// The role is read from the member row on every request so demotions apply
// immediately.
func RequireAuth(sessions SessionLookup, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
				return
			}

			sess, err := sessions.GetByToken(r.Context(), token)
			if err != nil || sess == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
				return
			}

			user, err := users.GetByID(r.Context(), sess.UserID)
			if err != nil || user == nil || user.HouseholdID != sess.HouseholdID {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
				return
			}

			ac := auth.AuthContext{
				UserID:      sess.UserID,
				HouseholdID: sess.HouseholdID,
				Role:        user.Role,
				SessionID:   sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the authenticated user has the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, "forbidden", "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
