package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(
		&u.ID, &u.HouseholdID, &u.Name, &u.Email, &u.Color, &u.AvatarEmoji,
		&u.Role, &u.TargetShare, &u.HasPIN, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, household_id, name, email, color, avatar_emoji, role, target_share, pin IS NOT NULL, created_at, updated_at`

// NewUser holds the fields accepted when creating a member.
type NewUser struct {
	HouseholdID int64
	Name        string
	Email       string
	Color       string
	AvatarEmoji string
	Role        string
	PINHash     string
}

func (s *UserStore) Create(ctx context.Context, nu NewUser) (*model.User, error) {
	if nu.Role == "" {
		nu.Role = model.RoleMember
	}
	if nu.Color == "" {
		nu.Color = "#3B82F6"
	}
	var pin sql.NullString
	if nu.PINHash != "" {
		pin = sql.NullString{String: nu.PINHash, Valid: true}
	}

	result, err := conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO users (household_id, name, email, color, avatar_emoji, role, pin) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nu.HouseholdID, nu.Name, nu.Email, nu.Color, nu.AvatarEmoji, nu.Role, pin,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListByHousehold(ctx context.Context, householdID int64) ([]model.User, error) {
	rows, err := conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+userCols+` FROM users WHERE household_id = ? ORDER BY id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) Update(ctx context.Context, id int64, name, color, avatarEmoji string) (*model.User, error) {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET name = ?, color = ?, avatar_emoji = ? WHERE id = ?`,
		name, color, avatarEmoji, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) SetTargetShare(ctx context.Context, id int64, share int) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `UPDATE users SET target_share = ? WHERE id = ?`, share, id)
	if err != nil {
		return fmt.Errorf("set target share: %w", err)
	}
	return nil
}

func (s *UserStore) SetPIN(ctx context.Context, id int64, hashedPIN string) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `UPDATE users SET pin = ? WHERE id = ?`, hashedPIN, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

// GetPINHash returns the stored bcrypt hash, or "" when the user has no PIN.
func (s *UserStore) GetPINHash(ctx context.Context, id int64) (string, error) {
	var pin sql.NullString
	err := conn(ctx, s.db).QueryRowContext(ctx, `SELECT pin FROM users WHERE id = ?`, id).Scan(&pin)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("user %d not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("query pin: %w", err)
	}
	return pin.String, nil
}
