package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/choreboard/internal/achievement"
	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/leaderboard"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

const (
	defaultStatsLimit = 10
	maxStatsLimit     = 104
)

// ViewHandler serves the read-only standings, badges and stats history.
type ViewHandler struct {
	boards       *leaderboard.Service
	achievements *achievement.Service
	stats        *store.StatsStore
	logger       *slog.Logger
}

func NewViewHandler(ls *leaderboard.Service, as *achievement.Service, ss *store.StatsStore, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{boards: ls, achievements: as, stats: ss, logger: logger}
}

func (h *ViewHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	board, err := h.boards.Leaderboard(r.Context(), ac.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *ViewHandler) Equality(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	view, err := h.boards.Equality(r.Context(), ac.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ViewHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.achievements.ForHousehold(r.Context(), ac.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stats lists past stats records, newest first: ?type=week|month&limit=n.
func (h *ViewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	q := r.URL.Query()

	pt := model.PeriodType(q.Get("type"))
	if pt == "" {
		pt = model.PeriodWeek
	}
	if !pt.Valid() {
		writeError(w, h.logger, invalid("type must be week or month"))
		return
	}
	limit := defaultStatsLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxStatsLimit {
			writeError(w, h.logger, invalid("limit must be between 1 and %d", maxStatsLimit))
			return
		}
		limit = n
	}

	records, err := h.stats.ListByHouseholdAndType(r.Context(), ac.HouseholdID, pt, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if records == nil {
		records = []model.StatsRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
