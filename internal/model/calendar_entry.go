package model

import "time"

type EntryStatus string

const (
	EntryPlanned   EntryStatus = "planned"
	EntrySubmitted EntryStatus = "submitted"
	EntryApproved  EntryStatus = "approved"
	EntryRejected  EntryStatus = "rejected"
)

func (s EntryStatus) Valid() bool {
	switch s {
	case EntryPlanned, EntrySubmitted, EntryApproved, EntryRejected:
		return true
	}
	return false
}

// CalendarEntry is one scheduled instance of a chore for one assignee.
// Date has day granularity and is stored at UTC midnight.
type CalendarEntry struct {
	ID          int64       `json:"id"`
	HouseholdID int64       `json:"householdId"`
	ChoreID     int64       `json:"choreId"`
	AssigneeID  int64       `json:"assigneeId"`
	Date        time.Time   `json:"date"`
	Status      EntryStatus `json:"status"`
	SubmittedAt *time.Time  `json:"submittedAt"`
	ApprovedAt  *time.Time  `json:"approvedAt"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
