// Package leaderboard renders the current-week standings of a household,
// both as a competition ranking and as each member's share of the work.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/model"
)

type StatsStore interface {
	ListByHouseholdAndType(ctx context.Context, householdID int64, pt model.PeriodType, limit int) ([]model.StatsRecord, error)
}

type HouseholdStore interface {
	GetByID(ctx context.Context, id int64) (*model.Household, error)
}

type UserStore interface {
	ListByHousehold(ctx context.Context, householdID int64) ([]model.User, error)
}

type Row struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Points int    `json:"points"`
}

type Board struct {
	PeriodStart *time.Time `json:"periodStart"`
	PeriodEnd   *time.Time `json:"periodEnd"`
	Users       []Row      `json:"users"`
	Total       int        `json:"total"`
	Winner      *Row       `json:"winner"`
}

type Share struct {
	UserID      int64  `json:"userId"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Points      int    `json:"points"`
	Share       int    `json:"share"`
	TargetShare int    `json:"targetShare"`
}

type EqualityView struct {
	Mode        model.HouseholdMode `json:"mode"`
	PeriodStart *time.Time          `json:"periodStart"`
	PeriodEnd   *time.Time          `json:"periodEnd"`
	Total       int                 `json:"total"`
	Shares      []Share             `json:"shares"`
}

type Service struct {
	stats      StatsStore
	households HouseholdStore
	users      UserStore
	logger     *slog.Logger
}

func NewService(ss StatsStore, hs HouseholdStore, us UserStore, logger *slog.Logger) *Service {
	return &Service{stats: ss, households: hs, users: us, logger: logger}
}

// snapshot is the data both views are built from.
type snapshot struct {
	household *model.Household
	record    *model.StatsRecord
	users     map[int64]model.User
}

func (s *Service) load(ctx context.Context, householdID int64) (*snapshot, error) {
	var snap snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := s.households.GetByID(gctx, householdID)
		if err != nil {
			return fmt.Errorf("load household: %w", err)
		}
		if h == nil {
			return fmt.Errorf("household %d: %w", householdID, apperr.ErrNotFound)
		}
		snap.household = h
		return nil
	})
	g.Go(func() error {
		records, err := s.stats.ListByHouseholdAndType(gctx, householdID, model.PeriodWeek, 1)
		if err != nil {
			return fmt.Errorf("load week stats: %w", err)
		}
		if len(records) > 0 {
			snap.record = &records[0]
		}
		return nil
	})
	g.Go(func() error {
		users, err := s.users.ListByHousehold(gctx, householdID)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		snap.users = make(map[int64]model.User, len(users))
		for _, u := range users {
			snap.users[u.ID] = u
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Leaderboard ranks the members by points in the most recent week that has a
// stats record. Winner is nil when there is no record or it is empty.
func (s *Service) Leaderboard(ctx context.Context, householdID int64) (*Board, error) {
	snap, err := s.load(ctx, householdID)
	if err != nil {
		return nil, err
	}

	b := &Board{Users: []Row{}}
	if snap.record == nil {
		return b, nil
	}
	b.PeriodStart, b.PeriodEnd = &snap.record.PeriodStart, &snap.record.PeriodEnd

	for _, p := range snap.record.Points {
		u := snap.users[p.UserID]
		b.Users = append(b.Users, Row{UserID: p.UserID, Name: u.Name, Color: u.Color, Points: p.Points})
		b.Total += p.Points
	}
	sort.SliceStable(b.Users, func(i, j int) bool {
		if b.Users[i].Points != b.Users[j].Points {
			return b.Users[i].Points > b.Users[j].Points
		}
		return b.Users[i].UserID < b.Users[j].UserID
	})
	if len(b.Users) > 0 {
		w := b.Users[0]
		b.Winner = &w
	}
	return b, nil
}

// Equality reports each member's percentage of the week's points next to
// their target share. Members without points are listed with zero.
func (s *Service) Equality(ctx context.Context, householdID int64) (*EqualityView, error) {
	snap, err := s.load(ctx, householdID)
	if err != nil {
		return nil, err
	}

	v := &EqualityView{Mode: snap.household.Mode, Shares: []Share{}}
	points := make(map[int64]int)
	if snap.record != nil {
		v.PeriodStart, v.PeriodEnd = &snap.record.PeriodStart, &snap.record.PeriodEnd
		for _, p := range snap.record.Points {
			points[p.UserID] += p.Points
		}
		v.Total = snap.record.Total()
	}

	for id := range points {
		if _, ok := snap.users[id]; !ok {
			snap.users[id] = model.User{ID: id}
		}
	}
	for id, u := range snap.users {
		v.Shares = append(v.Shares, Share{
			UserID:      id,
			Name:        u.Name,
			Color:       u.Color,
			Points:      points[id],
			Share:       SharePercent(points[id], v.Total),
			TargetShare: u.TargetShare,
		})
	}
	sort.Slice(v.Shares, func(i, j int) bool { return v.Shares[i].UserID < v.Shares[j].UserID })
	return v, nil
}

// SharePercent returns points as a rounded percentage of total, or 0 when
// total is 0.
func SharePercent(points, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(points) / float64(total) * 100))
}
