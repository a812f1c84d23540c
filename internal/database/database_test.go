package database

import (
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
)

const latestVersion = 3

func TestOpenAppliesMigrations(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	version, err := goose.GetDBVersion(db)
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	if version != latestVersion {
		t.Errorf("version = %d, want %d", version, latestVersion)
	}

	var triggers int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'trigger'`).Scan(&triggers); err != nil {
		t.Fatalf("count triggers: %v", err)
	}
	if triggers != 4 {
		t.Errorf("triggers = %d, want 4", triggers)
	}
}

func TestOpenTwiceIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO households (name) VALUES ('Hemma')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM households`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("households = %d, want 1", n)
	}
}

func TestUpdatedAtTrigger(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`INSERT INTO households (name, updated_at) VALUES ('Hemma', '2000-01-01 00:00:00')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.Exec(`UPDATE households SET name = 'Stugan'`); err != nil {
		t.Fatalf("update: %v", err)
	}
	var stale int
	if err := db.QueryRow(`SELECT COUNT(*) FROM households WHERE updated_at = '2000-01-01 00:00:00'`).Scan(&stale); err != nil {
		t.Fatalf("query: %v", err)
	}
	if stale != 0 {
		t.Error("updated_at was not refreshed by the trigger")
	}
}
