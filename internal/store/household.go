package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.Name, &h.Mode, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const householdCols = `id, name, mode, created_at, updated_at`

func (s *HouseholdStore) Create(ctx context.Context, name string, mode model.HouseholdMode) (*model.Household, error) {
	if mode == "" {
		mode = model.ModeCompetition
	}
	result, err := conn(ctx, s.db).ExecContext(ctx, `INSERT INTO households (name, mode) VALUES (?, ?)`, name, mode)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *HouseholdStore) GetByID(ctx context.Context, id int64) (*model.Household, error) {
	row := conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) List(ctx context.Context) ([]model.Household, error) {
	rows, err := conn(ctx, s.db).QueryContext(ctx, `SELECT `+householdCols+` FROM households ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var households []model.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		households = append(households, *h)
	}
	return households, rows.Err()
}

func (s *HouseholdStore) Update(ctx context.Context, id int64, name string, mode model.HouseholdMode) (*model.Household, error) {
	_, err := conn(ctx, s.db).ExecContext(ctx, `UPDATE households SET name = ?, mode = ? WHERE id = ?`, name, mode, id)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *HouseholdStore) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return nil
}

// SeedDefaults inserts the standard chore roster for a new household. Run it
// inside the transaction that created the household.
func (s *HouseholdStore) SeedDefaults(ctx context.Context, householdID int64) error {
	q := conn(ctx, s.db)
	for i, c := range model.StandardChores {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO chores (household_id, title, points, active, is_default, slug, sort_order) VALUES (?, ?, ?, 1, 1, ?, ?)`,
			householdID, c.Title, c.Points, c.Slug, i+1,
		); err != nil {
			return fmt.Errorf("seed chore %q: %w", c.Slug, err)
		}
	}
	return nil
}
