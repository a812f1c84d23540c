package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/choreboard/internal/achievement"
	"github.com/dukerupert/choreboard/internal/config"
	"github.com/dukerupert/choreboard/internal/handler"
	"github.com/dukerupert/choreboard/internal/leaderboard"
	"github.com/dukerupert/choreboard/internal/lifecycle"
	"github.com/dukerupert/choreboard/internal/middleware"
	"github.com/dukerupert/choreboard/internal/stats"
	"github.com/dukerupert/choreboard/internal/store"
)

const (
	clientLimit  = 10
	clientWindow = time.Minute

	pinFailureLimit  = 5
	pinFailureWindow = 15 * time.Minute
)

type Server struct {
	env          *config.Environment
	householdH   *handler.HouseholdHandler
	memberH      *handler.MemberHandler
	authH        *handler.AuthHandler
	choreH       *handler.ChoreHandler
	entryH       *handler.EntryHandler
	approvalH    *handler.ApprovalHandler
	viewH        *handler.ViewHandler
	sessionStore *store.SessionStore
	userStore    *store.UserStore
	clientIP     func(*http.Request) string
	clients      *middleware.Attempts
	pinFailures  *middleware.Attempts
	logger       *slog.Logger
}

func New(env *config.Environment) *Server {
	db, logger := env.DB, env.Logger

	trusted, err := middleware.ParseTrustedProxies(env.Config.TrustedProxies)
	if err != nil {
		logger.Warn("ignoring trusted proxies", "error", err)
		trusted = nil
	}
	pinFailures := middleware.NewAttempts(pinFailureLimit, pinFailureWindow)

	householdStore := store.NewHouseholdStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db, env.Config.SessionTTL)
	choreStore := store.NewChoreStore(db)
	entryStore := store.NewCalendarStore(db)
	approvalStore := store.NewApprovalStore(db)
	statsStore := store.NewStatsStore(db)
	tx := store.NewTransactor(db, store.DefaultRetryPolicy)

	aggregator := stats.NewAggregator(statsStore, entryStore, choreStore, tx, logger.With("component", "stats"))
	lifecycleSvc := lifecycle.NewService(choreStore, userStore, entryStore, approvalStore, aggregator, tx,
		lifecycle.Config{MaxPending: env.Config.MaxPendingPerUser, Now: env.Now},
		logger.With("component", "lifecycle"))
	achievementSvc := achievement.NewService(entryStore, choreStore, userStore, env.Now, logger.With("component", "achievement"))
	leaderboardSvc := leaderboard.NewService(statsStore, householdStore, userStore, logger.With("component", "leaderboard"))

	return &Server{
		env:          env,
		householdH:   handler.NewHouseholdHandler(tx, householdStore, userStore, sessionStore, logger.With("component", "household")),
		memberH:      handler.NewMemberHandler(userStore, logger.With("component", "member")),
		authH:        handler.NewAuthHandler(userStore, sessionStore, pinFailures, logger.With("component", "auth")),
		choreH:       handler.NewChoreHandler(choreStore, logger.With("component", "chore")),
		entryH:       handler.NewEntryHandler(lifecycleSvc, logger.With("component", "entry")),
		approvalH:    handler.NewApprovalHandler(lifecycleSvc, logger.With("component", "approval")),
		viewH:        handler.NewViewHandler(leaderboardSvc, achievementSvc, statsStore, logger.With("component", "view")),
		sessionStore: sessionStore,
		userStore:    userStore,
		clientIP:     middleware.ClientIP(trusted),
		clients:      middleware.NewAttempts(clientLimit, clientWindow),
		pinFailures:  pinFailures,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// PruneLimiters drops expired attempt windows and returns how many went.
func (s *Server) PruneLimiters() int {
	return s.clients.Prune() + s.pinFailures.Prune()
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /api/households", s.rateLimitedHandler(s.householdH.Register))
	outerMux.HandleFunc("POST /api/sessions", s.rateLimitedHandler(s.authH.Login))

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/api/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.env.DB.PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	return middleware.LimitClients(s.clients, s.clientIP)(h).ServeHTTP
}

func adminOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Session
	mux.HandleFunc("DELETE /api/sessions", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Household and members
	mux.HandleFunc("GET /api/household", s.householdH.Get)
	mux.Handle("PUT /api/household", adminOnly(s.householdH.Update))
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.Handle("POST /api/members", adminOnly(s.memberH.Create))
	mux.HandleFunc("PUT /api/members/{id}", s.memberH.Update)
	mux.HandleFunc("PUT /api/members/{id}/pin", s.memberH.SetPIN)

	// Chores
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.Handle("POST /api/chores", adminOnly(s.choreH.Create))
	mux.Handle("PUT /api/chores/{id}", adminOnly(s.choreH.Update))
	mux.Handle("DELETE /api/chores/{id}", adminOnly(s.choreH.Deactivate))
	mux.Handle("POST /api/chores/{id}/activate", adminOnly(s.choreH.Activate))

	// Calendar entries
	mux.HandleFunc("GET /api/entries", s.entryH.List)
	mux.HandleFunc("POST /api/entries", s.entryH.Create)
	mux.HandleFunc("GET /api/entries/{id}", s.entryH.Get)
	mux.HandleFunc("PUT /api/entries/{id}", s.entryH.Update)
	mux.HandleFunc("DELETE /api/entries/{id}", s.entryH.Delete)
	mux.HandleFunc("POST /api/entries/{id}/submit", s.entryH.Submit)

	// Approvals
	mux.HandleFunc("GET /api/approvals", s.approvalH.ListPending)
	mux.HandleFunc("POST /api/approvals/{id}/review", s.approvalH.Review)

	// Views
	mux.HandleFunc("GET /api/leaderboard", s.viewH.Leaderboard)
	mux.HandleFunc("GET /api/equality", s.viewH.Equality)
	mux.HandleFunc("GET /api/achievements", s.viewH.Achievements)
	mux.HandleFunc("GET /api/stats", s.viewH.Stats)
}
