package model

import "time"

// Chore is a reusable task definition. Standard chores carry IsDefault and a
// canonical Slug; only those are eligible for per-chore badges.
type Chore struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"householdId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Active      bool      `json:"active"`
	IsDefault   bool      `json:"isDefault"`
	Slug        string    `json:"slug,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StandardChore describes one of the chores seeded into every new household.
type StandardChore struct {
	Slug   string
	Title  string
	Points int
}

// StandardChores is the fixed roster seeded on household creation.
var StandardChores = []StandardChore{
	{Slug: "diska", Title: "Diska", Points: 2},
	{Slug: "tvatta", Title: "Tvätta", Points: 3},
	{Slug: "dammsuga", Title: "Dammsuga", Points: 3},
	{Slug: "handla", Title: "Handla", Points: 2},
	{Slug: "laga-mat", Title: "Laga mat", Points: 3},
	{Slug: "ta-ut-soporna", Title: "Ta ut soporna", Points: 1},
	{Slug: "stada-badrum", Title: "Städa badrum", Points: 4},
}
