package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/lifecycle"
	"github.com/dukerupert/choreboard/internal/model"
)

type ApprovalHandler struct {
	svc    *lifecycle.Service
	logger *slog.Logger
}

func NewApprovalHandler(svc *lifecycle.Service, logger *slog.Logger) *ApprovalHandler {
	return &ApprovalHandler{svc: svc, logger: logger}
}

func (h *ApprovalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	approvals, err := h.svc.PendingApprovals(r.Context(), ac.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if approvals == nil {
		approvals = []model.ApprovalRequest{}
	}
	writeJSON(w, http.StatusOK, approvals)
}

type reviewRequest struct {
	Action  lifecycle.Action `json:"action"`
	Comment string           `json:"comment"`
}

// Review approves or rejects a pending approval as the caller.
func (h *ApprovalHandler) Review(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.svc.Review(r.Context(), id, ac.UserID, req.Action, req.Comment)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
