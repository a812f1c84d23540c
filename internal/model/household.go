package model

import "time"

type HouseholdMode string

const (
	ModeCompetition HouseholdMode = "competition"
	ModeEquality    HouseholdMode = "equality"
)

func (m HouseholdMode) Valid() bool {
	return m == ModeCompetition || m == ModeEquality
}

type Household struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Mode      HouseholdMode `json:"mode"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
