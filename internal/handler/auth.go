package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/middleware"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

type AuthHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	failures *middleware.Attempts
	logger   *slog.Logger
}

// NewAuthHandler returns an AuthHandler. failures counts wrong PINs per
// member; once a member's budget is used up, logins for that member are
// refused until the window ends, whatever address they come from.
func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, failures *middleware.Attempts, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: us, sessions: ss, failures: failures, logger: logger}
}

func pinKey(userID int64) string {
	return "pin:" + strconv.FormatInt(userID, 10)
}

type loginRequest struct {
	UserID int64  `json:"userId"`
	PIN    string `json:"pin"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

func setSessionCookie(w http.ResponseWriter, sess *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Login starts a session for a member who proves their PIN.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	key := pinKey(req.UserID)
	if wait, blocked := h.failures.Blocked(key); blocked {
		h.logger.Warn("login locked", "user_id", req.UserID, "remote", r.RemoteAddr)
		middleware.SetRetryAfter(w, wait)
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limited", "message": "too many failed PIN attempts"})
		return
	}

	unauthorized := func() {
		h.failures.Record(key)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized", "message": "unknown member or incorrect PIN"})
	}

	user, err := h.users.GetByID(r.Context(), req.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if user == nil || !user.HasPIN {
		unauthorized()
		return
	}
	hash, err := h.users.GetPINHash(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
		h.logger.Warn("login failed", "user_id", user.ID, "remote", r.RemoteAddr)
		unauthorized()
		return
	}

	h.failures.Reset(key)

	sess, err := h.sessions.Create(r.Context(), user.ID, user.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	setSessionCookie(w, sess)
	h.logger.Info("session started", "user_id", user.ID, "household_id", user.HouseholdID)
	writeJSON(w, http.StatusCreated, sessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.sessions.Delete(r.Context(), ac.SessionID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the caller's member record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.GetByID(r.Context(), ac.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
