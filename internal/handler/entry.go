package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/lifecycle"
	"github.com/dukerupert/choreboard/internal/model"
)

type EntryHandler struct {
	svc    *lifecycle.Service
	logger *slog.Logger
}

func NewEntryHandler(svc *lifecycle.Service, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{svc: svc, logger: logger}
}

type entryRequest struct {
	ChoreID    int64  `json:"choreId"`
	AssigneeID int64  `json:"assigneeId"`
	Date       string `json:"date"`
}

// List returns entries in [from, to); both bounds are optional dates.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	q := r.URL.Query()
	var from, to time.Time
	if s := q.Get("from"); s != "" {
		if from, err = lifecycle.ParseDate(s); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}
	if s := q.Get("to"); s != "" {
		if to, err = lifecycle.ParseDate(s); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	entries, err := h.svc.ListEntries(r.Context(), ac.HouseholdID, from, to, model.EntryStatus(q.Get("status")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []model.CalendarEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, err := auth.Caller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.ChoreID == 0 || req.Date == "" {
		writeError(w, h.logger, invalid("choreId and date are required"))
		return
	}
	if req.AssigneeID == 0 {
		req.AssigneeID = ac.UserID
	}
	date, err := lifecycle.ParseDate(req.Date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	entry, err := h.svc.CreateEntry(r.Context(), ac.HouseholdID, req.ChoreID, req.AssigneeID, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	entry, err := h.svc.GetEntry(r.Context(), ac.HouseholdID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type entryUpdateRequest struct {
	Date       *string `json:"date"`
	AssigneeID *int64  `json:"assigneeId"`
}

func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req entryUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	entry, err := h.svc.UpdateEntry(r.Context(), ac.HouseholdID, id, lifecycle.EntryUpdate{Date: req.Date, AssigneeID: req.AssigneeID})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.DeleteEntry(r.Context(), ac.HouseholdID, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit sends the entry for review on behalf of the caller, who must be its
// assignee.
func (h *EntryHandler) Submit(w http.ResponseWriter, r *http.Request) {
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
	if _, err := h.svc.GetEntry(r.Context(), ac.HouseholdID, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	sub, err := h.svc.Submit(r.Context(), id, ac.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
