package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

func TestApprovalLifecycle(t *testing.T) {
	db := setupTestDB(t)
	as := NewApprovalStore(db)
	es := NewCalendarStore(db)
	ctx := context.Background()
	h, admin, member := seedHousehold(t, db)
	c, _ := NewChoreStore(db).Create(ctx, h.ID, "Diska", "", 2)

	var approvals []*model.ApprovalRequest
	for d := 3; d <= 4; d++ {
		e, err := es.Create(ctx, model.CalendarEntry{
			HouseholdID: h.ID, ChoreID: c.ID, AssigneeID: member.ID,
			Date: day(2025, 3, d), Status: model.EntrySubmitted,
		})
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		a, err := as.Create(ctx, e.ID, member.ID)
		if err != nil {
			t.Fatalf("create approval: %v", err)
		}
		if a.Status != model.ApprovalPending || a.ReviewerID != nil {
			t.Errorf("new approval = %+v", a)
		}
		approvals = append(approvals, a)
	}

	n, err := as.CountPendingBySubmitter(ctx, member.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("pending = %d, want 2", n)
	}

	now := time.Now().UTC()
	a := approvals[0]
	a.Status = model.ApprovalApproved
	a.ReviewerID = &admin.ID
	a.ReviewedAt = &now
	a.Comment = "Fint"
	if err := as.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := as.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.ApprovalApproved || got.ReviewerID == nil || *got.ReviewerID != admin.ID || got.ReviewedAt == nil || got.Comment != "Fint" {
		t.Errorf("reviewed = %+v", got)
	}

	pending, err := as.ListPendingByHousehold(ctx, h.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != approvals[1].ID {
		t.Errorf("pending = %+v", pending)
	}

	other, _ := NewHouseholdStore(db).Create(ctx, "Grannen", "")
	none, err := as.ListPendingByHousehold(ctx, other.ID)
	if err != nil {
		t.Fatalf("list pending other: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no pending approvals for other household, got %d", len(none))
	}
}
