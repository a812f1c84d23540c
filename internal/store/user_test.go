package store

import (
	"context"
	"testing"

	"github.com/dukerupert/choreboard/internal/model"
)

func TestUserCreateDefaults(t *testing.T) {
	db := setupTestDB(t)
	_, admin, member := seedHousehold(t, db)

	if admin.Role != model.RoleAdmin {
		t.Errorf("admin role = %q", admin.Role)
	}
	if member.Role != model.RoleMember {
		t.Errorf("member role = %q, want %q", member.Role, model.RoleMember)
	}
	if member.Color != "#3B82F6" {
		t.Errorf("color = %q, want default", member.Color)
	}
	if member.HasPIN {
		t.Error("expected no PIN")
	}
}

func TestUserListAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ctx := context.Background()
	h, admin, member := seedHousehold(t, db)

	users, err := us.ListByHousehold(ctx, h.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].ID != admin.ID || users[1].ID != member.ID {
		t.Fatalf("users = %+v", users)
	}

	u, err := us.Update(ctx, member.ID, "Berra", "#10B981", "🧹")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "Berra" || u.Color != "#10B981" || u.AvatarEmoji != "🧹" {
		t.Errorf("updated = %+v", u)
	}

	if err := us.SetTargetShare(ctx, member.ID, 40); err != nil {
		t.Fatalf("set target share: %v", err)
	}
	u, err = us.GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.TargetShare != 40 {
		t.Errorf("target share = %d, want 40", u.TargetShare)
	}
}

func TestUserPIN(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ctx := context.Background()
	_, _, member := seedHousehold(t, db)

	hash, err := us.GetPINHash(ctx, member.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if hash != "" {
		t.Errorf("hash = %q, want empty", hash)
	}

	if err := us.SetPIN(ctx, member.ID, "$2a$10$hash"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	hash, err = us.GetPINHash(ctx, member.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if hash != "$2a$10$hash" {
		t.Errorf("hash = %q", hash)
	}
	u, _ := us.GetByID(ctx, member.ID)
	if !u.HasPIN {
		t.Error("expected HasPIN after SetPIN")
	}

	if _, err := us.GetPINHash(ctx, 9999); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	u, err := NewUserStore(db).GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Error("expected nil user")
	}
}
