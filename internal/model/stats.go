package model

import "time"

type PeriodType string

const (
	PeriodWeek  PeriodType = "week"
	PeriodMonth PeriodType = "month"
)

func (p PeriodType) Valid() bool {
	return p == PeriodWeek || p == PeriodMonth
}

type UserPoints struct {
	UserID int64 `json:"userId"`
	Points int   `json:"points"`
}

// StatsRecord is the running point total per user for one household period.
// The interval is half-open: [PeriodStart, PeriodEnd).
type StatsRecord struct {
	ID          int64        `json:"id"`
	HouseholdID int64        `json:"householdId"`
	PeriodType  PeriodType   `json:"periodType"`
	PeriodStart time.Time    `json:"periodStart"`
	PeriodEnd   time.Time    `json:"periodEnd"`
	Points      []UserPoints `json:"points"`
}

// Total returns the sum of all users' points in the record.
func (r StatsRecord) Total() int {
	total := 0
	for _, p := range r.Points {
		total += p.Points
	}
	return total
}
