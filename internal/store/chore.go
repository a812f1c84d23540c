package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	err := scanner.Scan(
		&c.ID, &c.HouseholdID, &c.Title, &c.Description, &c.Points,
		&c.Active, &c.IsDefault, &c.Slug, &c.SortOrder,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const choreCols = `id, household_id, title, description, points, active, is_default, slug, sort_order, created_at, updated_at`

func (s *ChoreStore) Create(ctx context.Context, householdID int64, title, description string, points int) (*model.Chore, error) {
	q := conn(ctx, s.db)

	var maxOrder int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) FROM chores WHERE household_id = ?`, householdID,
	).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query max sort_order: %w", err)
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO chores (household_id, title, description, points, sort_order) VALUES (?, ?, ?, ?, ?)`,
		householdID, title, description, points, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ChoreStore) GetByID(ctx context.Context, id int64) (*model.Chore, error) {
	row := conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) list(ctx context.Context, where string, args ...any) ([]model.Chore, error) {
	rows, err := conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+choreCols+` FROM chores WHERE `+where+` ORDER BY sort_order ASC, title ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// ListByHousehold returns every chore of the household, deactivated ones included.
func (s *ChoreStore) ListByHousehold(ctx context.Context, householdID int64) ([]model.Chore, error) {
	return s.list(ctx, `household_id = ?`, householdID)
}

func (s *ChoreStore) ListActive(ctx context.Context, householdID int64) ([]model.Chore, error) {
	return s.list(ctx, `household_id = ? AND active = 1`, householdID)
}

// PointsByID returns the current point value of every chore in the household,
// or of every chore when householdID is 0.
func (s *ChoreStore) PointsByID(ctx context.Context, householdID int64) (map[int64]int, error) {
	query := `SELECT id, points FROM chores`
	var args []any
	if householdID != 0 {
		query += ` WHERE household_id = ?`
		args = append(args, householdID)
	}
	rows, err := conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chore points: %w", err)
	}
	defer rows.Close()

	points := make(map[int64]int)
	for rows.Next() {
		var id int64
		var p int
		if err := rows.Scan(&id, &p); err != nil {
			return nil, fmt.Errorf("scan chore points: %w", err)
		}
		points[id] = p
	}
	return points, rows.Err()
}

func (s *ChoreStore) Update(ctx context.Context, id int64, title, description string, points int) (*model.Chore, error) {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE chores SET title = ?, description = ?, points = ? WHERE id = ?`,
		title, description, points, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(ctx, id)
}

// SetActive toggles a chore. Chores are deactivated rather than deleted so
// historical entries keep resolving.
func (s *ChoreStore) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `UPDATE chores SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("set chore active: %w", err)
	}
	return nil
}
