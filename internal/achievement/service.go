package achievement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/choreboard/internal/model"
)

type EntryStore interface {
	ListByStatus(ctx context.Context, householdID int64, status model.EntryStatus) ([]model.CalendarEntry, error)
}

type ChoreStore interface {
	ListByHousehold(ctx context.Context, householdID int64) ([]model.Chore, error)
}

type UserStore interface {
	ListByHousehold(ctx context.Context, householdID int64) ([]model.User, error)
}

type Service struct {
	entries EntryStore
	chores  ChoreStore
	users   UserStore
	now     func() time.Time
	logger  *slog.Logger
}

// NewService returns a Service reading the clock from now. A nil now means
// time.Now.
func NewService(es EntryStore, cs ChoreStore, us UserStore, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{entries: es, chores: cs, users: us, now: now, logger: logger}
}

// ForHousehold computes the achievements of one household.
func (s *Service) ForHousehold(ctx context.Context, householdID int64) (*Result, error) {
	var in Input

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := s.entries.ListByStatus(gctx, householdID, model.EntryApproved)
		if err != nil {
			return fmt.Errorf("load approved entries: %w", err)
		}
		in.Entries = entries
		return nil
	})
	g.Go(func() error {
		chores, err := s.chores.ListByHousehold(gctx, householdID)
		if err != nil {
			return fmt.Errorf("load chores: %w", err)
		}
		in.Chores = chores
		return nil
	})
	g.Go(func() error {
		users, err := s.users.ListByHousehold(gctx, householdID)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		in.Users = users
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := Compute(in, s.now())
	s.logger.Debug("achievements computed", "household_id", householdID, "entries", len(in.Entries), "badges", len(res.Badges))
	return &res, nil
}
