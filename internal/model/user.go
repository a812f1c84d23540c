package model

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a household member. TargetShare is the member's intended share of
// the household's points, in percent.
type User struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"householdId"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Color       string    `json:"color"`
	AvatarEmoji string    `json:"avatarEmoji"`
	Role        string    `json:"role"`
	TargetShare int       `json:"targetShare"`
	HasPIN      bool      `json:"hasPin"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
