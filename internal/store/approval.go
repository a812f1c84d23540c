package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
)

type ApprovalStore struct {
	db *sql.DB
}

func NewApprovalStore(db *sql.DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

func scanApproval(scanner interface{ Scan(...any) error }) (*model.ApprovalRequest, error) {
	var a model.ApprovalRequest
	var reviewerID sql.NullInt64
	var reviewedAt sql.NullTime

	err := scanner.Scan(
		&a.ID, &a.EntryID, &a.SubmitterID, &reviewerID, &a.Status,
		&a.Comment, &a.CreatedAt, &reviewedAt,
	)
	if err != nil {
		return nil, err
	}

	if reviewerID.Valid {
		a.ReviewerID = &reviewerID.Int64
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time.UTC()
		a.ReviewedAt = &t
	}
	return &a, nil
}

const approvalCols = `id, entry_id, submitter_id, reviewer_id, status, comment, created_at, reviewed_at`

func (s *ApprovalStore) Create(ctx context.Context, entryID, submitterID int64) (*model.ApprovalRequest, error) {
	result, err := conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO approval_requests (entry_id, submitter_id, status) VALUES (?, ?, ?)`,
		entryID, submitterID, model.ApprovalPending,
	)
	if err != nil {
		return nil, fmt.Errorf("insert approval: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ApprovalStore) GetByID(ctx context.Context, id int64) (*model.ApprovalRequest, error) {
	row := conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+approvalCols+` FROM approval_requests WHERE id = ?`, id)
	a, err := scanApproval(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get approval: %w", err)
	}
	return a, nil
}

// Update stores the review outcome of a.
func (s *ApprovalStore) Update(ctx context.Context, a *model.ApprovalRequest) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE approval_requests SET reviewer_id = ?, status = ?, comment = ?, reviewed_at = ? WHERE id = ?`,
		nullInt64(a.ReviewerID), a.Status, a.Comment, nullTime(a.ReviewedAt), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	return nil
}

// CountPendingBySubmitter counts the submitter's pending approvals across all households.
func (s *ApprovalStore) CountPendingBySubmitter(ctx context.Context, userID int64) (int, error) {
	var n int
	err := conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM approval_requests WHERE submitter_id = ? AND status = ?`,
		userID, model.ApprovalPending,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending approvals: %w", err)
	}
	return n, nil
}

// ListPendingByHousehold returns pending approvals whose entry belongs to the household.
func (s *ApprovalStore) ListPendingByHousehold(ctx context.Context, householdID int64) ([]model.ApprovalRequest, error) {
	rows, err := conn(ctx, s.db).QueryContext(ctx,
		`SELECT a.id, a.entry_id, a.submitter_id, a.reviewer_id, a.status, a.comment, a.created_at, a.reviewed_at
		 FROM approval_requests a
		 JOIN calendar_entries e ON e.id = a.entry_id
		 WHERE e.household_id = ? AND a.status = ?
		 ORDER BY a.created_at ASC, a.id ASC`,
		householdID, model.ApprovalPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	defer rows.Close()

	var approvals []model.ApprovalRequest
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		approvals = append(approvals, *a)
	}
	return approvals, rows.Err()
}
