package leaderboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/model"
)

type fakeStats struct{ records []model.StatsRecord }

func (f *fakeStats) ListByHouseholdAndType(_ context.Context, householdID int64, pt model.PeriodType, limit int) ([]model.StatsRecord, error) {
	var out []model.StatsRecord
	for _, r := range f.records {
		if r.HouseholdID == householdID && r.PeriodType == pt {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeHouseholds map[int64]*model.Household

func (f fakeHouseholds) GetByID(_ context.Context, id int64) (*model.Household, error) {
	return f[id], nil
}

type fakeUsers []model.User

func (f fakeUsers) ListByHousehold(_ context.Context, householdID int64) ([]model.User, error) {
	var out []model.User
	for _, u := range f {
		if u.HouseholdID == householdID {
			out = append(out, u)
		}
	}
	return out, nil
}

var week = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func newTestService(records ...model.StatsRecord) *Service {
	return NewService(
		&fakeStats{records: records},
		fakeHouseholds{1: {ID: 1, Name: "Hemma", Mode: model.ModeEquality}},
		fakeUsers{
			{ID: 1, HouseholdID: 1, Name: "Anna", Color: "#3B82F6", TargetShare: 50},
			{ID: 2, HouseholdID: 1, Name: "Bertil", Color: "#EF4444", TargetShare: 50},
			{ID: 3, HouseholdID: 1, Name: "Cecilia", TargetShare: 0},
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func weekRecord(points ...model.UserPoints) model.StatsRecord {
	return model.StatsRecord{
		ID:          1,
		HouseholdID: 1,
		PeriodType:  model.PeriodWeek,
		PeriodStart: week,
		PeriodEnd:   week.AddDate(0, 0, 7),
		Points:      points,
	}
}

func TestLeaderboardRanking(t *testing.T) {
	svc := newTestService(weekRecord(
		model.UserPoints{UserID: 1, Points: 4},
		model.UserPoints{UserID: 2, Points: 9},
		model.UserPoints{UserID: 3, Points: 4},
	))

	b, err := svc.Leaderboard(context.Background(), 1)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if b.Total != 17 {
		t.Errorf("Total = %d, want 17", b.Total)
	}
	wantOrder := []int64{2, 1, 3}
	for i, id := range wantOrder {
		if b.Users[i].UserID != id {
			t.Errorf("Users[%d].UserID = %d, want %d", i, b.Users[i].UserID, id)
		}
	}
	if b.Winner == nil || b.Winner.Name != "Bertil" {
		t.Errorf("Winner = %+v, want Bertil", b.Winner)
	}
	if b.PeriodStart == nil || !b.PeriodStart.Equal(week) {
		t.Errorf("PeriodStart = %v, want %v", b.PeriodStart, week)
	}
}

func TestLeaderboardNoRecord(t *testing.T) {
	svc := newTestService()

	b, err := svc.Leaderboard(context.Background(), 1)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if b.Winner != nil {
		t.Errorf("Winner = %+v, want nil", b.Winner)
	}
	if len(b.Users) != 0 || b.Total != 0 {
		t.Errorf("Board = %+v, want empty", b)
	}
}

func TestLeaderboardUnknownHousehold(t *testing.T) {
	svc := newTestService()

	_, err := svc.Leaderboard(context.Background(), 99)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEqualityShares(t *testing.T) {
	svc := newTestService(weekRecord(
		model.UserPoints{UserID: 1, Points: 1},
		model.UserPoints{UserID: 2, Points: 2},
	))

	v, err := svc.Equality(context.Background(), 1)
	if err != nil {
		t.Fatalf("equality: %v", err)
	}
	if v.Mode != model.ModeEquality {
		t.Errorf("Mode = %q, want equality", v.Mode)
	}
	if v.Total != 3 {
		t.Errorf("Total = %d, want 3", v.Total)
	}
	want := map[int64]int{1: 33, 2: 67, 3: 0}
	if len(v.Shares) != len(want) {
		t.Fatalf("len(Shares) = %d, want %d", len(v.Shares), len(want))
	}
	for _, s := range v.Shares {
		if s.Share != want[s.UserID] {
			t.Errorf("user %d share = %d, want %d", s.UserID, s.Share, want[s.UserID])
		}
	}
	if v.Shares[0].TargetShare != 50 {
		t.Errorf("TargetShare = %d, want 50", v.Shares[0].TargetShare)
	}
}

func TestEqualityZeroTotal(t *testing.T) {
	svc := newTestService(weekRecord(
		model.UserPoints{UserID: 1, Points: 0},
		model.UserPoints{UserID: 2, Points: 0},
	))

	v, err := svc.Equality(context.Background(), 1)
	if err != nil {
		t.Fatalf("equality: %v", err)
	}
	for _, s := range v.Shares {
		if s.Share != 0 {
			t.Errorf("user %d share = %d, want 0", s.UserID, s.Share)
		}
	}
}

func TestSharePercent(t *testing.T) {
	tests := []struct {
		points, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{10, 10, 100},
	}
	for _, tt := range tests {
		if got := SharePercent(tt.points, tt.total); got != tt.want {
			t.Errorf("SharePercent(%d, %d) = %d, want %d", tt.points, tt.total, got, tt.want)
		}
	}
}
