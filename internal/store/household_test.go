package store

import (
	"context"
	"testing"

	"github.com/dukerupert/choreboard/internal/model"
)

func TestHouseholdCRUD(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ctx := context.Background()

	h, err := hs.Create(ctx, "Hemma", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.Mode != model.ModeCompetition {
		t.Errorf("mode = %q, want %q", h.Mode, model.ModeCompetition)
	}

	updated, err := hs.Update(ctx, h.ID, "Stugan", model.ModeEquality)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Stugan" || updated.Mode != model.ModeEquality {
		t.Errorf("updated = %+v", updated)
	}

	list, err := hs.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 household, got %d", len(list))
	}

	if err := hs.Delete(ctx, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := hs.GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSeedDefaults(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, _, _ := seedHousehold(t, db)

	if err := NewHouseholdStore(db).SeedDefaults(ctx, h.ID); err != nil {
		t.Fatalf("seed: %v", err)
	}

	chores, err := NewChoreStore(db).ListByHousehold(ctx, h.ID)
	if err != nil {
		t.Fatalf("list chores: %v", err)
	}
	if len(chores) != len(model.StandardChores) {
		t.Fatalf("expected %d chores, got %d", len(model.StandardChores), len(chores))
	}
	for i, want := range model.StandardChores {
		c := chores[i]
		if c.Slug != want.Slug || c.Points != want.Points || !c.IsDefault || !c.Active {
			t.Errorf("chore[%d] = %+v, want slug %q points %d", i, c, want.Slug, want.Points)
		}
	}
}
