package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

type MemberHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewMemberHandler(us *store.UserStore, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{users: us, logger: logger}
}

type memberRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Color       string `json:"color"`
	AvatarEmoji string `json:"avatarEmoji"`
	PIN         string `json:"pin"`
}

func (req memberRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return invalid("name is required")
	}
	if req.Color != "" && !hexColorRegexp.MatchString(req.Color) {
		return invalid("color must be a hex color like #3B82F6")
	}
	if req.PIN != "" && !validPIN(req.PIN) {
		return invalid("PIN must be exactly 4 digits")
	}
	return nil
}

func (req memberRequest) newUser() (store.NewUser, error) {
	if err := req.validate(); err != nil {
		return store.NewUser{}, err
	}
	nu := store.NewUser{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Color:       req.Color,
		AvatarEmoji: req.AvatarEmoji,
	}
	if req.PIN != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
		if err != nil {
			return store.NewUser{}, err
		}
		nu.PINHash = string(hash)
	}
	return nu, nil
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	users, err := h.users.ListByHousehold(r.Context(), ac.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Create adds a member to the caller's household. Admin only.
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	nu, err := req.newUser()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	nu.HouseholdID = ac.HouseholdID

	user, err := h.users.Create(r.Context(), nu)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("member added", "household_id", ac.HouseholdID, "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// member loads the path's member and checks the caller may manage them.
func (h *MemberHandler) member(r *http.Request) (*model.User, error) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		return nil, err
	}
	id, err := parseIDParam(r)
	if err != nil {
		return nil, err
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.HouseholdID != ac.HouseholdID {
		return nil, apperr.ErrNotFound
	}
	if !ac.CanManage(user.ID) {
		return nil, apperr.ErrForbidden
	}
	return user, nil
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := h.member(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.PIN = ""
	if req.Color == "" {
		req.Color = user.Color
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	updated, err := h.users.Update(r.Context(), user.ID, strings.TrimSpace(req.Name), req.Color, req.AvatarEmoji)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func (h *MemberHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	user, err := h.member(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req pinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !validPIN(req.PIN) {
		writeError(w, h.logger, invalid("PIN must be exactly 4 digits"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.users.SetPIN(r.Context(), user.ID, string(hash)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
