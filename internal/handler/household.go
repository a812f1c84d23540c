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

type HouseholdHandler struct {
	tx         *store.Transactor
	households *store.HouseholdStore
	users      *store.UserStore
	sessions   *store.SessionStore
	logger     *slog.Logger
}

func NewHouseholdHandler(tx *store.Transactor, hs *store.HouseholdStore, us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{tx: tx, households: hs, users: us, sessions: ss, logger: logger}
}

type registerRequest struct {
	Name  string              `json:"name"`
	Mode  model.HouseholdMode `json:"mode"`
	Admin memberRequest       `json:"admin"`
}

type registerResponse struct {
	Household *model.Household `json:"household"`
	Admin     *model.User      `json:"admin"`
	Token     string           `json:"token"`
}

// Register creates a household with the standard chores and its first admin,
// and signs the admin in.
func (h *HouseholdHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, h.logger, invalid("name is required"))
		return
	}
	if req.Mode == "" {
		req.Mode = model.ModeCompetition
	}
	if !req.Mode.Valid() {
		writeError(w, h.logger, invalid("mode %q", req.Mode))
		return
	}
	nu, err := req.Admin.newUser()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if nu.PINHash == "" {
		writeError(w, h.logger, invalid("admin pin is required"))
		return
	}
	nu.Role = model.RoleAdmin

	var resp registerResponse
	err = h.tx.InTx(r.Context(), func(ctx context.Context) error {
		hh, err := h.households.Create(ctx, req.Name, req.Mode)
		if err != nil {
			return err
		}
		if err := h.households.SeedDefaults(ctx, hh.ID); err != nil {
			return err
		}
		nu.HouseholdID = hh.ID
		admin, err := h.users.Create(ctx, nu)
		if err != nil {
			return err
		}
		sess, err := h.sessions.Create(ctx, admin.ID, hh.ID)
		if err != nil {
			return err
		}
		resp = registerResponse{Household: hh, Admin: admin, Token: sess.Token}
		return nil
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("household registered", "household_id", resp.Household.ID, "admin_id", resp.Admin.ID)
	writeJSON(w, http.StatusCreated, resp)
}

type householdView struct {
	*model.Household
	Members []model.User `json:"members"`
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	view, err := h.load(r.Context(), ac.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *HouseholdHandler) load(ctx context.Context, householdID int64) (*householdView, error) {
	hh, err := h.households.GetByID(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if hh == nil {
		return nil, apperr.ErrNotFound
	}
	members, err := h.users.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []model.User{}
	}
	return &householdView{Household: hh, Members: members}, nil
}

type updateHouseholdRequest struct {
	Name         *string              `json:"name"`
	Mode         *model.HouseholdMode `json:"mode"`
	TargetShares map[int64]int        `json:"targetShares"`
}

// Update changes the name, the mode and the members' target shares. Target
// shares must each lie in [0, 100] and, when given, sum to 100 or 0.
func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req updateHouseholdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Mode != nil && !req.Mode.Valid() {
		writeError(w, h.logger, invalid("mode %q", *req.Mode))
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, h.logger, invalid("name must not be empty"))
		return
	}
	sum := 0
	for id, share := range req.TargetShares {
		if share < 0 || share > 100 {
			writeError(w, h.logger, invalid("target share %d for user %d", share, id))
			return
		}
		sum += share
	}
	if len(req.TargetShares) > 0 && sum != 100 && sum != 0 {
		writeError(w, h.logger, invalid("target shares sum to %d", sum))
		return
	}

	err = h.tx.InTx(r.Context(), func(ctx context.Context) error {
		hh, err := h.households.GetByID(ctx, ac.HouseholdID)
		if err != nil {
			return err
		}
		if hh == nil {
			return apperr.ErrNotFound
		}
		name, mode := hh.Name, hh.Mode
		if req.Name != nil {
			name = strings.TrimSpace(*req.Name)
		}
		if req.Mode != nil {
			mode = *req.Mode
		}
		if _, err := h.households.Update(ctx, hh.ID, name, mode); err != nil {
			return err
		}

		for id, share := range req.TargetShares {
			u, err := h.users.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if u == nil || u.HouseholdID != hh.ID {
				return invalid("user %d is not a member", id)
			}
			if err := h.users.SetTargetShare(ctx, id, share); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	view, err := h.load(r.Context(), ac.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
