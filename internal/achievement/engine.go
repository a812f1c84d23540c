// Package achievement derives monthly and yearly badges from a household's
// approved chore history. Computation is a pure function of the history and
// the current time; nothing is persisted.
package achievement

import (
	"sort"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/period"
)

type Winner struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Wins   int    `json:"wins"`
}

type MonthWinner struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Count  int    `json:"count"`
}

type Badge struct {
	Slug         string        `json:"slug"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Winners      []Winner      `json:"winners"`
	MonthWinners []MonthWinner `json:"monthWinners"`
}

type PointsWinner struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type Result struct {
	Badges                  []Badge        `json:"badges"`
	MonthPointsWinner       []PointsWinner `json:"monthPointsWinner"`
	YearPointsWinner        []PointsWinner `json:"yearPointsWinner"`
	LatestCompletedMonthKey *string        `json:"latestCompletedMonthKey"`
}

// Input is the household history the engine works on.
type Input struct {
	Entries []model.CalendarEntry
	Chores  []model.Chore
	Users   []model.User
}

// counts maps user id to a tally.
type counts map[int64]int

// monthly maps a "YYYY-MM" key to per-user tallies.
type monthly map[string]counts

func (m monthly) add(month string, userID int64, n int) {
	c, ok := m[month]
	if !ok {
		c = make(counts)
		m[month] = c
	}
	c[userID] += n
}

// Compute evaluates every badge over the approved entries of in. Months from
// the one containing now onwards are ignored, so only fully elapsed months
// count. Ties are never broken: all tied users are returned. Entry dates are
// UTC midnights, so months are keyed in UTC regardless of now's location.
func Compute(in Input, now time.Time) Result {
	now = now.UTC()
	chores := make(map[int64]model.Chore, len(in.Chores))
	for _, c := range in.Chores {
		chores[c.ID] = c
	}
	users := make(map[int64]model.User, len(in.Users))
	for _, u := range in.Users {
		users[u.ID] = u
	}

	currentMonth := period.MonthKey(now)
	targetYear := now.Year() - 1

	perChore := make(map[string]monthly)
	points := make(monthly)
	tasks := make(monthly)
	yearPoints := make(counts)
	latest := ""

	for _, e := range in.Entries {
		if e.Status != model.EntryApproved {
			continue
		}
		chore, ok := chores[e.ChoreID]
		if !ok {
			continue
		}
		if _, ok := users[e.AssigneeID]; !ok {
			continue
		}

		date := e.Date.UTC()
		month := period.MonthKey(date)
		if month >= currentMonth {
			continue
		}
		if month > latest {
			latest = month
		}

		if chore.IsDefault && chore.Slug != "" {
			m, ok := perChore[chore.Slug]
			if !ok {
				m = make(monthly)
				perChore[chore.Slug] = m
			}
			m.add(month, e.AssigneeID, 1)
		}
		points.add(month, e.AssigneeID, chore.Points)
		tasks.add(month, e.AssigneeID, 1)
		if date.Year() == targetYear {
			yearPoints[e.AssigneeID] += chore.Points
		}
	}

	res := Result{
		Badges:            []Badge{},
		MonthPointsWinner: []PointsWinner{},
		YearPointsWinner:  []PointsWinner{},
	}
	if latest != "" {
		res.LatestCompletedMonthKey = &latest
	}

	for _, slug := range standardSlugs(in.Chores) {
		res.Badges = append(res.Badges, choreBadge(slug, perChore[slug], latest, users, chores))
	}
	res.Badges = append(res.Badges, activityBadges(tasks, in.Users)...)

	if latest != "" {
		res.MonthPointsWinner = pointsWinners(points[latest], users)
	}
	res.YearPointsWinner = pointsWinners(yearPoints, users)
	return res
}

// standardSlugs returns the distinct standard chore slugs of the household in
// catalog order; unknown slugs follow alphabetically.
func standardSlugs(chores []model.Chore) []string {
	seen := make(map[string]bool)
	var slugs []string
	for _, c := range chores {
		if !c.IsDefault || c.Slug == "" || seen[c.Slug] {
			continue
		}
		seen[c.Slug] = true
		slugs = append(slugs, c.Slug)
	}
	sort.Slice(slugs, func(i, j int) bool {
		_, oi, _ := lookupBadge(slugs[i])
		_, oj, _ := lookupBadge(slugs[j])
		if oi != oj {
			return oi < oj
		}
		return slugs[i] < slugs[j]
	})
	return slugs
}

func choreBadge(slug string, months monthly, latest string, users map[int64]model.User, chores map[int64]model.Chore) Badge {
	info, _, ok := lookupBadge(slug)
	if !ok {
		info = badgeInfo{title: choreTitle(slug, chores)}
	}

	wins := make(counts)
	for _, c := range months {
		if total(c) < MinMonthlyCompletions {
			continue
		}
		for _, id := range leaders(c) {
			wins[id]++
		}
	}

	b := Badge{
		Slug:         slug,
		Title:        info.title,
		Description:  info.description,
		Winners:      rankWinners(wins, users),
		MonthWinners: []MonthWinner{},
	}

	if c := months[latest]; latest != "" && total(c) >= MinMonthlyCompletions {
		for _, id := range leaders(c) {
			u := users[id]
			b.MonthWinners = append(b.MonthWinners, MonthWinner{UserID: id, Name: u.Name, Color: u.Color, Count: c[id]})
		}
	}
	return b
}

func choreTitle(slug string, chores map[int64]model.Chore) string {
	for _, c := range chores {
		if c.Slug == slug {
			return c.Title
		}
	}
	return slug
}

// activityBadges awards "most active" to the month's top task count holders
// and "least active" to every member with no tasks that month. Members are
// zero-filled so inactive ones are counted. A badge is only returned when
// somebody has won it.
func activityBadges(tasks monthly, members []model.User) []Badge {
	most := make(counts)
	least := make(counts)

	for _, c := range tasks {
		if total(c) == 0 {
			continue
		}
		filled := make(counts, len(members))
		for _, u := range members {
			filled[u.ID] = c[u.ID]
		}
		for _, id := range leaders(filled) {
			most[id]++
		}
		for id, n := range filled {
			if n == 0 {
				least[id]++
			}
		}
	}

	users := make(map[int64]model.User, len(members))
	for _, u := range members {
		users[u.ID] = u
	}

	var badges []Badge
	for _, a := range []struct {
		slug string
		wins counts
	}{{SlugMostActive, most}, {SlugLeastActive, least}} {
		if len(a.wins) == 0 {
			continue
		}
		info, _, _ := lookupBadge(a.slug)
		badges = append(badges, Badge{
			Slug:         a.slug,
			Title:        info.title,
			Description:  info.description,
			Winners:      rankWinners(a.wins, users),
			MonthWinners: []MonthWinner{},
		})
	}
	return badges
}

func pointsWinners(c counts, users map[int64]model.User) []PointsWinner {
	winners := []PointsWinner{}
	if highest(c) <= 0 {
		return winners
	}
	for _, id := range leaders(c) {
		winners = append(winners, PointsWinner{UserID: id, Name: users[id].Name, Points: c[id]})
	}
	return winners
}

// leaders returns the ids holding the maximum tally, ascending.
func leaders(c counts) []int64 {
	top := highest(c)
	var ids []int64
	for id, n := range c {
		if n == top {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// rankWinners orders users with at least one win by wins descending.
func rankWinners(wins counts, users map[int64]model.User) []Winner {
	out := []Winner{}
	for id, n := range wins {
		if n < 1 {
			continue
		}
		u := users[id]
		out = append(out, Winner{UserID: id, Name: u.Name, Color: u.Color, Wins: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func total(c counts) int {
	sum := 0
	for _, n := range c {
		sum += n
	}
	return sum
}

func highest(c counts) int {
	top := 0
	first := true
	for _, n := range c {
		if first || n > top {
			top = n
			first = false
		}
	}
	return top
}
