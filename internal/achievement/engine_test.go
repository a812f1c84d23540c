package achievement

import (
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	in     Input
	nextID int64
}

func newFixture() *fixture {
	return &fixture{in: Input{
		Users: []model.User{
			{ID: 1, Name: "Anna", Color: "#3B82F6"},
			{ID: 2, Name: "Bertil", Color: "#EF4444"},
		},
		Chores: []model.Chore{
			{ID: 10, Title: "Diska", Slug: "diska", IsDefault: true, Points: 2},
			{ID: 11, Title: "Tvätta", Slug: "tvatta", IsDefault: true, Points: 3},
			{ID: 12, Title: "Vattna blommor", Points: 1},
		},
	}}
}

func (f *fixture) approve(choreID, userID int64, date time.Time) {
	f.nextID++
	f.in.Entries = append(f.in.Entries, model.CalendarEntry{
		ID:         f.nextID,
		ChoreID:    choreID,
		AssigneeID: userID,
		Date:       date,
		Status:     model.EntryApproved,
	})
}

func findBadge(t *testing.T, res Result, slug string) *Badge {
	t.Helper()
	for i := range res.Badges {
		if res.Badges[i].Slug == slug {
			return &res.Badges[i]
		}
	}
	return nil
}

func TestComputeMonthlyChoreWinner(t *testing.T) {
	f := newFixture()
	for d := 3; d <= 7; d++ {
		f.approve(10, 1, day(2025, 2, d))
	}

	res := Compute(f.in, now)

	if res.LatestCompletedMonthKey == nil || *res.LatestCompletedMonthKey != "2025-02" {
		t.Fatalf("LatestCompletedMonthKey = %v, want 2025-02", res.LatestCompletedMonthKey)
	}
	b := findBadge(t, res, "diska")
	if b == nil {
		t.Fatal("diska badge missing")
	}
	if b.Title != "Diskgeni" {
		t.Errorf("Title = %q, want Diskgeni", b.Title)
	}
	if len(b.MonthWinners) != 1 {
		t.Fatalf("MonthWinners = %+v, want one", b.MonthWinners)
	}
	mw := b.MonthWinners[0]
	if mw.UserID != 1 || mw.Count != 5 || mw.Color != "#3B82F6" {
		t.Errorf("MonthWinners[0] = %+v", mw)
	}
	if len(b.Winners) != 1 || b.Winners[0].UserID != 1 || b.Winners[0].Wins != 1 {
		t.Errorf("Winners = %+v", b.Winners)
	}
	if len(res.MonthPointsWinner) != 1 || res.MonthPointsWinner[0].Points != 10 {
		t.Errorf("MonthPointsWinner = %+v, want Anna with 10", res.MonthPointsWinner)
	}
}

func TestComputeRequiresFiveCompletions(t *testing.T) {
	f := newFixture()
	for d := 3; d <= 6; d++ {
		f.approve(10, 1, day(2025, 2, d))
	}

	res := Compute(f.in, now)

	b := findBadge(t, res, "diska")
	if b == nil {
		t.Fatal("diska badge missing")
	}
	if len(b.Winners) != 0 {
		t.Errorf("Winners = %+v, want none", b.Winners)
	}
	if len(b.MonthWinners) != 0 {
		t.Errorf("MonthWinners = %+v, want none", b.MonthWinners)
	}
}

func TestComputeExcludesCurrentMonth(t *testing.T) {
	f := newFixture()
	for d := 1; d <= 6; d++ {
		f.approve(10, 1, day(2025, 3, d))
	}
	// Future months are not completed either.
	f.approve(11, 2, day(2025, 4, 2))

	res := Compute(f.in, now)

	if res.LatestCompletedMonthKey != nil {
		t.Errorf("LatestCompletedMonthKey = %q, want nil", *res.LatestCompletedMonthKey)
	}
	if b := findBadge(t, res, "diska"); b == nil || len(b.Winners) != 0 {
		t.Errorf("diska badge = %+v, want no winners", b)
	}
	if findBadge(t, res, SlugMostActive) != nil {
		t.Error("kampe badge emitted for current-month activity")
	}
	if len(res.MonthPointsWinner) != 0 {
		t.Errorf("MonthPointsWinner = %+v, want empty", res.MonthPointsWinner)
	}
}

func TestComputeTiesAreCoWinners(t *testing.T) {
	f := newFixture()
	for d := 1; d <= 3; d++ {
		f.approve(10, 1, day(2025, 1, d))
		f.approve(10, 2, day(2025, 1, d))
	}

	res := Compute(f.in, now)

	b := findBadge(t, res, "diska")
	if len(b.MonthWinners) != 2 {
		t.Fatalf("MonthWinners = %+v, want both users", b.MonthWinners)
	}
	if b.MonthWinners[0].UserID != 1 || b.MonthWinners[1].UserID != 2 {
		t.Errorf("MonthWinners order = %+v", b.MonthWinners)
	}
	if len(res.MonthPointsWinner) != 2 {
		t.Errorf("MonthPointsWinner = %+v, want both users", res.MonthPointsWinner)
	}
}

func TestComputeWinsRankedAcrossMonths(t *testing.T) {
	f := newFixture()
	for _, m := range []time.Month{time.January, time.February} {
		for d := 1; d <= 5; d++ {
			f.approve(11, 2, day(2025, m, d))
		}
	}
	for d := 1; d <= 5; d++ {
		f.approve(11, 1, day(2024, 12, d))
	}

	res := Compute(f.in, now)

	b := findBadge(t, res, "tvatta")
	if len(b.Winners) != 2 {
		t.Fatalf("Winners = %+v", b.Winners)
	}
	if b.Winners[0].UserID != 2 || b.Winners[0].Wins != 2 {
		t.Errorf("Winners[0] = %+v, want Bertil with 2 wins", b.Winners[0])
	}
	if b.Winners[1].UserID != 1 || b.Winners[1].Wins != 1 {
		t.Errorf("Winners[1] = %+v, want Anna with 1 win", b.Winners[1])
	}
}

func TestComputeActivityBadges(t *testing.T) {
	f := newFixture()
	f.in.Users = append(f.in.Users, model.User{ID: 3, Name: "Cecilia"})
	f.approve(12, 1, day(2025, 2, 1))
	f.approve(12, 1, day(2025, 2, 2))
	f.approve(12, 2, day(2025, 2, 3))

	res := Compute(f.in, now)

	kampe := findBadge(t, res, SlugMostActive)
	if kampe == nil || len(kampe.Winners) != 1 || kampe.Winners[0].UserID != 1 {
		t.Errorf("kampe = %+v, want Anna", kampe)
	}
	latmask := findBadge(t, res, SlugLeastActive)
	if latmask == nil || len(latmask.Winners) != 1 || latmask.Winners[0].UserID != 3 {
		t.Errorf("latmask = %+v, want Cecilia", latmask)
	}
}

func TestComputeNoHistory(t *testing.T) {
	f := newFixture()

	res := Compute(f.in, now)

	if findBadge(t, res, SlugMostActive) != nil || findBadge(t, res, SlugLeastActive) != nil {
		t.Error("activity badges emitted without history")
	}
	if len(res.Badges) != 2 {
		t.Errorf("len(Badges) = %d, want one per standard chore", len(res.Badges))
	}
	if res.MonthPointsWinner == nil || res.YearPointsWinner == nil {
		t.Error("winner lists should be empty, not nil")
	}
}

func TestComputeYearPointsWinner(t *testing.T) {
	f := newFixture()
	f.approve(11, 1, day(2024, 6, 1))
	f.approve(10, 2, day(2024, 7, 1))
	f.approve(10, 2, day(2024, 7, 2))
	// Outside the target year.
	f.approve(11, 2, day(2023, 12, 31))
	f.approve(11, 2, day(2025, 1, 5))

	res := Compute(f.in, now)

	if len(res.YearPointsWinner) != 1 {
		t.Fatalf("YearPointsWinner = %+v", res.YearPointsWinner)
	}
	w := res.YearPointsWinner[0]
	if w.UserID != 2 || w.Points != 4 {
		t.Errorf("YearPointsWinner[0] = %+v, want Bertil with 4", w)
	}
}

func TestComputeIgnoresNonApprovedAndOrphans(t *testing.T) {
	f := newFixture()
	for d := 1; d <= 5; d++ {
		f.approve(10, 1, day(2025, 2, d))
	}
	f.in.Entries[0].Status = model.EntrySubmitted
	f.approve(99, 1, day(2025, 2, 9))
	f.approve(10, 42, day(2025, 2, 9))

	res := Compute(f.in, now)

	if b := findBadge(t, res, "diska"); len(b.Winners) != 0 {
		t.Errorf("Winners = %+v, want none with only 4 approved", b.Winners)
	}
}

func TestStandardSlugsCatalogOrder(t *testing.T) {
	chores := []model.Chore{
		{Slug: "stada-badrum", IsDefault: true},
		{Slug: "zzz", IsDefault: true},
		{Slug: "diska", IsDefault: true},
		{Slug: "diska", IsDefault: true},
		{Slug: "custom"},
	}
	got := standardSlugs(chores)
	want := []string{"diska", "stada-badrum", "zzz"}
	if len(got) != len(want) {
		t.Fatalf("standardSlugs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("standardSlugs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestComputeMonthKeyedInUTC(t *testing.T) {
	f := newFixture()
	for d := 3; d <= 7; d++ {
		f.approve(10, 1, day(2025, 3, d))
	}

	// Already April at UTC+2, still March in UTC.
	east := time.FixedZone("UTC+2", 2*60*60)
	res := Compute(f.in, time.Date(2025, 4, 1, 1, 0, 0, 0, east))
	if res.LatestCompletedMonthKey != nil {
		t.Errorf("latestCompletedMonthKey = %q, want nil while March is current in UTC", *res.LatestCompletedMonthKey)
	}
	if b := findBadge(t, res, "diska"); b != nil && len(b.MonthWinners) != 0 {
		t.Errorf("diska monthWinners = %+v, want none", b.MonthWinners)
	}

	// Still March at UTC-5, already April in UTC.
	west := time.FixedZone("UTC-5", -5*60*60)
	res = Compute(f.in, time.Date(2025, 3, 31, 21, 0, 0, 0, west))
	if res.LatestCompletedMonthKey == nil || *res.LatestCompletedMonthKey != "2025-03" {
		t.Fatalf("latestCompletedMonthKey = %v, want 2025-03", res.LatestCompletedMonthKey)
	}
	b := findBadge(t, res, "diska")
	if b == nil || len(b.MonthWinners) != 1 || b.MonthWinners[0].UserID != 1 || b.MonthWinners[0].Count != 5 {
		t.Errorf("diska badge = %+v, want Anna with 5", b)
	}
}
