package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

type ChoreHandler struct {
	chores *store.ChoreStore
	logger *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: cs, logger: logger}
}

type choreRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

func (req *choreRequest) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return invalid("title is required")
	}
	if req.Points < 0 {
		return invalid("points must not be negative")
	}
	return nil
}

// List returns the household's chores; ?active=true hides deactivated ones.
func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var chores []model.Chore
	if r.URL.Query().Get("active") == "true" {
		chores, err = h.chores.ListActive(r.Context(), ac.HouseholdID)
	} else {
		chores, err = h.chores.ListByHousehold(r.Context(), ac.HouseholdID)
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req choreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	chore, err := h.chores.Create(r.Context(), ac.HouseholdID, req.Title, req.Description, req.Points)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, chore)
}

func (h *ChoreHandler) owned(ctx context.Context, r *http.Request) (*model.Chore, error) {
	ac, err := auth.Caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseIDParam(r)
	if err != nil {
		return nil, err
	}
	chore, err := h.chores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if chore == nil || chore.HouseholdID != ac.HouseholdID {
		return nil, apperr.ErrNotFound
	}
	return chore, nil
}

// Update changes a chore. New points apply to future approvals and to any
// stats rebuild; already credited totals are left alone.
func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.owned(r.Context(), r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req choreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	chore, err := h.chores.Update(r.Context(), existing.ID, req.Title, req.Description, req.Points)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if chore.Points != existing.Points {
		h.logger.Info("chore points changed", "chore_id", chore.ID, "from", existing.Points, "to", chore.Points)
	}
	writeJSON(w, http.StatusOK, chore)
}

// Deactivate hides a chore from planning. Chores are never deleted so their
// history keeps counting.
func (h *ChoreHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *ChoreHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *ChoreHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	chore, err := h.owned(r.Context(), r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.chores.SetActive(r.Context(), chore.ID, active); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
