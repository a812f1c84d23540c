package store

import (
	"context"
	"testing"

	"github.com/dukerupert/choreboard/internal/model"
)

func TestStatsAddPointsAccumulates(t *testing.T) {
	db := setupTestDB(t)
	ss := NewStatsStore(db)
	ctx := context.Background()
	h, admin, member := seedHousehold(t, db)

	key := StatsKey{HouseholdID: h.ID, PeriodType: model.PeriodWeek, Start: day(2025, 3, 3), End: day(2025, 3, 10)}
	for _, c := range []struct {
		user   int64
		points int
	}{{member.ID, 2}, {admin.ID, 3}, {member.ID, 4}} {
		if err := ss.AddPoints(ctx, key, c.user, c.points); err != nil {
			t.Fatalf("add points: %v", err)
		}
	}

	r, err := ss.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r == nil {
		t.Fatal("expected record")
	}
	want := []model.UserPoints{{UserID: member.ID, Points: 6}, {UserID: admin.ID, Points: 3}}
	if len(r.Points) != len(want) {
		t.Fatalf("points = %+v, want %+v", r.Points, want)
	}
	for i := range want {
		if r.Points[i] != want[i] {
			t.Errorf("points[%d] = %+v, want %+v", i, r.Points[i], want[i])
		}
	}
	if r.Total() != 9 {
		t.Errorf("total = %d, want 9", r.Total())
	}
}

func TestStatsFindOrCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ss := NewStatsStore(db)
	ctx := context.Background()
	h, _, _ := seedHousehold(t, db)

	key := StatsKey{HouseholdID: h.ID, PeriodType: model.PeriodMonth, Start: day(2025, 3, 1), End: day(2025, 4, 1)}
	a, err := ss.FindOrCreate(ctx, key)
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	b, err := ss.FindOrCreate(ctx, key)
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if a.ID != b.ID {
		t.Errorf("ids differ: %d vs %d", a.ID, b.ID)
	}
	if len(a.Points) != 0 {
		t.Errorf("expected empty record, got %+v", a.Points)
	}

	missing, err := ss.Get(ctx, StatsKey{HouseholdID: h.ID, PeriodType: model.PeriodWeek, Start: day(2025, 3, 3), End: day(2025, 3, 10)})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing record")
	}
}

func TestStatsListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ss := NewStatsStore(db)
	ctx := context.Background()
	h, _, member := seedHousehold(t, db)

	for _, start := range []int{3, 17, 10} {
		key := StatsKey{HouseholdID: h.ID, PeriodType: model.PeriodWeek, Start: day(2025, 3, start), End: day(2025, 3, start+7)}
		if err := ss.AddPoints(ctx, key, member.ID, start); err != nil {
			t.Fatalf("add points: %v", err)
		}
	}
	monthKey := StatsKey{HouseholdID: h.ID, PeriodType: model.PeriodMonth, Start: day(2025, 3, 1), End: day(2025, 4, 1)}
	if err := ss.AddPoints(ctx, monthKey, member.ID, 1); err != nil {
		t.Fatalf("add month points: %v", err)
	}

	records, err := ss.ListByHouseholdAndType(ctx, h.ID, model.PeriodWeek, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].PeriodStart.Equal(day(2025, 3, 17)) || !records[1].PeriodStart.Equal(day(2025, 3, 10)) {
		t.Errorf("order = %v, %v", records[0].PeriodStart, records[1].PeriodStart)
	}
	if records[0].Points[0].Points != 17 {
		t.Errorf("points = %+v", records[0].Points)
	}
}

func TestStatsDeleteAllAndInsert(t *testing.T) {
	db := setupTestDB(t)
	ss := NewStatsStore(db)
	ctx := context.Background()
	h, admin, member := seedHousehold(t, db)

	key := StatsKey{HouseholdID: h.ID, PeriodType: model.PeriodWeek, Start: day(2025, 3, 3), End: day(2025, 3, 10)}
	if err := ss.AddPoints(ctx, key, member.ID, 5); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if err := ss.DeleteAll(ctx, h.ID); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if r, _ := ss.Get(ctx, key); r != nil {
		t.Fatal("expected record to be deleted")
	}

	err := ss.InsertRecords(ctx, []model.StatsRecord{{
		HouseholdID: h.ID, PeriodType: model.PeriodWeek,
		PeriodStart: day(2025, 3, 3), PeriodEnd: day(2025, 3, 10),
		Points: []model.UserPoints{{UserID: admin.ID, Points: 4}, {UserID: member.ID, Points: 1}},
	}})
	if err != nil {
		t.Fatalf("insert records: %v", err)
	}
	r, err := ss.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(r.Points) != 2 || r.Points[0].UserID != admin.ID || r.Points[0].Points != 4 {
		t.Errorf("points = %+v", r.Points)
	}
}
