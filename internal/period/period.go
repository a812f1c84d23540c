// Package period maps dates onto the week and month buckets used for point
// aggregation. All functions use the calendar fields of the date in its own
// location; there is no daylight-saving adjustment.
package period

import (
	"fmt"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

// Bounds is a half-open interval [Start, End).
type Bounds struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the interval.
func (b Bounds) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// WeekBounds returns Monday 00:00 of the week containing t and the following Monday.
func WeekBounds(t time.Time) Bounds {
	day := startOfDay(t)
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Bounds{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthBounds returns the 1st 00:00 of t's month and the 1st of the next month.
func MonthBounds(t time.Time) Bounds {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Bounds{Start: start, End: start.AddDate(0, 1, 0)}
}

// For returns the bounds of the given period type containing t.
func For(pt model.PeriodType, t time.Time) (Bounds, error) {
	switch pt {
	case model.PeriodWeek:
		return WeekBounds(t), nil
	case model.PeriodMonth:
		return MonthBounds(t), nil
	}
	return Bounds{}, fmt.Errorf("unknown period type %q", pt)
}

// MonthKey formats t's month as "YYYY-MM". Keys sort lexicographically in
// chronological order.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
