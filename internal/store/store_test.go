package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/database"
	"github.com/dukerupert/choreboard/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedHousehold creates a household with one admin and one member.
func seedHousehold(t *testing.T, db *sql.DB) (*model.Household, *model.User, *model.User) {
	t.Helper()
	ctx := context.Background()
	h, err := NewHouseholdStore(db).Create(ctx, "Hemma", model.ModeCompetition)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	us := NewUserStore(db)
	admin, err := us.Create(ctx, NewUser{HouseholdID: h.ID, Name: "Anna", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	member, err := us.Create(ctx, NewUser{HouseholdID: h.ID, Name: "Bertil"})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return h, admin, member
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
