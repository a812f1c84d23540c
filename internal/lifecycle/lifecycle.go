// Package lifecycle implements the calendar entry state machine: planning a
// chore for a member, submitting it for peer review, and reviewing it. An
// approval credits the chore's points to the stats aggregator inside the same
// transaction as the state change.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

// DefaultMaxPending is how many approvals one submitter may have waiting.
const DefaultMaxPending = 5

type ChoreStore interface {
	GetByID(ctx context.Context, id int64) (*model.Chore, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type CalendarStore interface {
	Create(ctx context.Context, e model.CalendarEntry) (*model.CalendarEntry, error)
	GetByID(ctx context.Context, id int64) (*model.CalendarEntry, error)
	Update(ctx context.Context, e *model.CalendarEntry) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, householdID, choreID, assigneeID int64, date time.Time, status model.EntryStatus) (bool, error)
	List(ctx context.Context, f store.EntryFilter) ([]model.CalendarEntry, error)
}

type ApprovalStore interface {
	Create(ctx context.Context, entryID, submitterID int64) (*model.ApprovalRequest, error)
	GetByID(ctx context.Context, id int64) (*model.ApprovalRequest, error)
	Update(ctx context.Context, a *model.ApprovalRequest) error
	CountPendingBySubmitter(ctx context.Context, userID int64) (int, error)
	ListPendingByHousehold(ctx context.Context, householdID int64) ([]model.ApprovalRequest, error)
}

// Crediter receives the points of every approved entry.
type Crediter interface {
	CreditApproval(ctx context.Context, householdID, userID int64, date time.Time, points int) error
}

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	MaxPending int
	Now        func() time.Time
}

type Service struct {
	chores    ChoreStore
	users     UserStore
	entries   CalendarStore
	approvals ApprovalStore
	credits   Crediter
	tx        Transactor
	cfg       Config
	logger    *slog.Logger
}

func NewService(cs ChoreStore, us UserStore, es CalendarStore, as ApprovalStore, cr Crediter, tx Transactor, cfg Config, logger *slog.Logger) *Service {
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = DefaultMaxPending
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		chores:    cs,
		users:     us,
		entries:   es,
		approvals: as,
		credits:   cr,
		tx:        tx,
		cfg:       cfg,
		logger:    logger,
	}
}

// ParseDate accepts "2006-01-02" or RFC 3339 and returns the calendar day at
// UTC midnight. RFC 3339 input keeps its own calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, apperr.ErrInvalidInput)
	}
	return Day(t), nil
}

// Day truncates t to its calendar day, expressed at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateEntry plans chore choreID for assigneeID on date.
func (s *Service) CreateEntry(ctx context.Context, householdID, choreID, assigneeID int64, date time.Time) (*model.CalendarEntry, error) {
	var created *model.CalendarEntry
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		chore, err := s.chores.GetByID(ctx, choreID)
		if err != nil {
			return err
		}
		if chore == nil {
			return fmt.Errorf("chore %d: %w", choreID, apperr.ErrNotFound)
		}
		assignee, err := s.users.GetByID(ctx, assigneeID)
		if err != nil {
			return err
		}
		if assignee == nil {
			return fmt.Errorf("user %d: %w", assigneeID, apperr.ErrNotFound)
		}
		if assignee.HouseholdID != chore.HouseholdID || chore.HouseholdID != householdID {
			return fmt.Errorf("user %d and chore %d: %w", assigneeID, choreID, apperr.ErrInvalidAssignment)
		}
		if !chore.Active {
			return fmt.Errorf("chore %d is inactive: %w", choreID, apperr.ErrInvalidInput)
		}

		day := Day(date)
		exists, err := s.entries.Exists(ctx, householdID, choreID, assigneeID, day, model.EntryPlanned)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("chore %d for user %d on %s: %w", choreID, assigneeID, day.Format(time.DateOnly), apperr.ErrDuplicateEntry)
		}

		created, err = s.entries.Create(ctx, model.CalendarEntry{
			HouseholdID: householdID,
			ChoreID:     choreID,
			AssigneeID:  assigneeID,
			Date:        day,
			Status:      model.EntryPlanned,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EntryUpdate carries the optional fields of UpdateEntry. Date is parsed with
// ParseDate.
type EntryUpdate struct {
	Date       *string
	AssigneeID *int64
}

// UpdateEntry moves a planned entry to another date or assignee.
func (s *Service) UpdateEntry(ctx context.Context, callerHouseholdID, entryID int64, upd EntryUpdate) (*model.CalendarEntry, error) {
	var updated *model.CalendarEntry
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		e, err := s.loadEntry(ctx, callerHouseholdID, entryID)
		if err != nil {
			return err
		}
		if !Editable(e.Status) {
			return fmt.Errorf("entry %d is %s: %w", entryID, e.Status, apperr.ErrInvalidState)
		}

		changed := false
		if upd.AssigneeID != nil && *upd.AssigneeID != e.AssigneeID {
			assignee, err := s.users.GetByID(ctx, *upd.AssigneeID)
			if err != nil {
				return err
			}
			if assignee == nil || assignee.HouseholdID != e.HouseholdID {
				return fmt.Errorf("user %d: %w", *upd.AssigneeID, apperr.ErrInvalidAssignment)
			}
			e.AssigneeID = assignee.ID
			changed = true
		}
		if upd.Date != nil {
			day, err := ParseDate(*upd.Date)
			if err != nil {
				return err
			}
			if !day.Equal(e.Date) {
				e.Date = day
				changed = true
			}
		}
		if !changed {
			updated = e
			return nil
		}

		exists, err := s.entries.Exists(ctx, e.HouseholdID, e.ChoreID, e.AssigneeID, e.Date, model.EntryPlanned)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("entry %d: %w", entryID, apperr.ErrDuplicateEntry)
		}
		if err := s.entries.Update(ctx, e); err != nil {
			return err
		}
		updated, err = s.entries.GetByID(ctx, e.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEntry removes a planned or rejected entry.
func (s *Service) DeleteEntry(ctx context.Context, callerHouseholdID, entryID int64) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		e, err := s.loadEntry(ctx, callerHouseholdID, entryID)
		if err != nil {
			return err
		}
		if !Deletable(e.Status) {
			return fmt.Errorf("entry %d is %s: %w", entryID, e.Status, apperr.ErrInvalidState)
		}
		return s.entries.Delete(ctx, e.ID)
	})
}

// GetEntry returns one entry of the caller's household.
func (s *Service) GetEntry(ctx context.Context, callerHouseholdID, entryID int64) (*model.CalendarEntry, error) {
	return s.loadEntry(ctx, callerHouseholdID, entryID)
}

// ListEntries returns the household's entries dated in [from, to), optionally
// restricted to one status.
func (s *Service) ListEntries(ctx context.Context, householdID int64, from, to time.Time, status model.EntryStatus) ([]model.CalendarEntry, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, apperr.ErrInvalidInput)
	}
	return s.entries.List(ctx, store.EntryFilter{HouseholdID: householdID, From: from, To: to, Status: status})
}

// PendingApprovals lists the approvals waiting for review in the household.
func (s *Service) PendingApprovals(ctx context.Context, householdID int64) ([]model.ApprovalRequest, error) {
	return s.approvals.ListPendingByHousehold(ctx, householdID)
}

func (s *Service) loadEntry(ctx context.Context, callerHouseholdID, entryID int64) (*model.CalendarEntry, error) {
	e, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("entry %d: %w", entryID, apperr.ErrNotFound)
	}
	if e.HouseholdID != callerHouseholdID {
		return nil, fmt.Errorf("entry %d belongs to another household: %w", entryID, apperr.ErrForbidden)
	}
	return e, nil
}

// Submission is the result of a successful Submit.
type Submission struct {
	Entry    *model.CalendarEntry    `json:"entry"`
	Approval *model.ApprovalRequest `json:"approval"`
}

// Submit sends a planned or rejected entry for review. Only the assignee may
// submit, and a submitter may hold at most MaxPending pending approvals in
// total, whichever household they were submitted in.
func (s *Service) Submit(ctx context.Context, entryID, submitterID int64) (*Submission, error) {
	var sub Submission
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		e, err := s.entries.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("entry %d: %w", entryID, apperr.ErrNotFound)
		}
		if e.AssigneeID != submitterID {
			return fmt.Errorf("user %d is not the assignee of entry %d: %w", submitterID, entryID, apperr.ErrForbidden)
		}
		if !CanTransition(e.Status, model.EntrySubmitted) {
			return fmt.Errorf("entry %d is %s: %w", entryID, e.Status, apperr.ErrInvalidState)
		}

		pending, err := s.approvals.CountPendingBySubmitter(ctx, submitterID)
		if err != nil {
			return err
		}
		if pending >= s.cfg.MaxPending {
			return fmt.Errorf("user %d has %d pending approvals: %w", submitterID, pending, apperr.ErrTooManyPending)
		}

		now := s.cfg.Now().UTC()
		e.Status = model.EntrySubmitted
		e.SubmittedAt = &now
		if err := s.entries.Update(ctx, e); err != nil {
			return err
		}

		approval, err := s.approvals.Create(ctx, e.ID, submitterID)
		if err != nil {
			return err
		}
		sub = Submission{Entry: e, Approval: approval}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("entry submitted", "entry_id", entryID, "approval_id", sub.Approval.ID, "submitter_id", submitterID)
	return &sub, nil
}

// Review is the result of a successful review.
type Review struct {
	Entry    *model.CalendarEntry    `json:"entry"`
	Approval *model.ApprovalRequest `json:"approval"`
	Points   int                    `json:"points"`
}

// Review approves or rejects a pending approval. Approving credits the chore's
// current point value to the assignee for the week and month of the entry's
// date; the credit commits together with the status changes or not at all.
func (s *Service) Review(ctx context.Context, approvalID, reviewerID int64, action Action, comment string) (*Review, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("review action %q: %w", action, apperr.ErrInvalidInput)
	}
	comment = strings.TrimSpace(comment)

	var res Review
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.approvals.GetByID(ctx, approvalID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("approval %d: %w", approvalID, apperr.ErrNotFound)
		}
		e, err := s.entries.GetByID(ctx, a.EntryID)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("entry %d: %w", a.EntryID, apperr.ErrNotFound)
		}
		if reviewerID == a.SubmitterID {
			return fmt.Errorf("user %d cannot review own submission: %w", reviewerID, apperr.ErrForbidden)
		}
		if a.Status != model.ApprovalPending {
			return fmt.Errorf("approval %d is %s: %w", approvalID, a.Status, apperr.ErrAlreadyReviewed)
		}
		reviewer, err := s.users.GetByID(ctx, reviewerID)
		if err != nil {
			return err
		}
		if reviewer == nil {
			return fmt.Errorf("user %d: %w", reviewerID, apperr.ErrNotFound)
		}
		if reviewer.HouseholdID != e.HouseholdID {
			return fmt.Errorf("user %d is not in household %d: %w", reviewerID, e.HouseholdID, apperr.ErrForbidden)
		}
		if !CanTransition(e.Status, action.entryStatus()) {
			return fmt.Errorf("entry %d is %s: %w", e.ID, e.Status, apperr.ErrInvalidState)
		}

		now := s.cfg.Now().UTC()
		a.Status = action.approvalStatus()
		a.ReviewerID = &reviewerID
		a.Comment = comment
		a.ReviewedAt = &now
		if err := s.approvals.Update(ctx, a); err != nil {
			return err
		}

		e.Status = action.entryStatus()
		if action == ActionApprove {
			e.ApprovedAt = &now
		}
		if err := s.entries.Update(ctx, e); err != nil {
			return err
		}

		res = Review{Entry: e, Approval: a}
		if action != ActionApprove {
			return nil
		}

		chore, err := s.chores.GetByID(ctx, e.ChoreID)
		if err != nil {
			return err
		}
		if chore == nil {
			return fmt.Errorf("chore %d: %w", e.ChoreID, apperr.ErrNotFound)
		}
		if err := s.credits.CreditApproval(ctx, e.HouseholdID, e.AssigneeID, e.Date, chore.Points); err != nil {
			return err
		}
		res.Points = chore.Points
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("approval reviewed",
		"approval_id", approvalID,
		"entry_id", res.Entry.ID,
		"reviewer_id", reviewerID,
		"action", string(action),
		"points", res.Points,
	)
	return &res, nil
}
