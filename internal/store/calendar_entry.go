package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/model"
)

type CalendarStore struct {
	db *sql.DB
}

func NewCalendarStore(db *sql.DB) *CalendarStore {
	return &CalendarStore{db: db}
}

func scanEntry(scanner interface{ Scan(...any) error }) (*model.CalendarEntry, error) {
	var e model.CalendarEntry
	var submittedAt, approvedAt sql.NullTime

	err := scanner.Scan(
		&e.ID, &e.HouseholdID, &e.ChoreID, &e.AssigneeID, &e.Date, &e.Status,
		&submittedAt, &approvedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Date = e.Date.UTC()
	if submittedAt.Valid {
		t := submittedAt.Time.UTC()
		e.SubmittedAt = &t
	}
	if approvedAt.Valid {
		t := approvedAt.Time.UTC()
		e.ApprovedAt = &t
	}
	return &e, nil
}

const entryCols = `id, household_id, chore_id, assignee_id, date, status, submitted_at, approved_at, created_at, updated_at`

// Create inserts a new entry. A second planned entry for the same household,
// chore, assignee and date violates a partial unique index and is reported as
// apperr.ErrDuplicateEntry.
func (s *CalendarStore) Create(ctx context.Context, e model.CalendarEntry) (*model.CalendarEntry, error) {
	if e.Status == "" {
		e.Status = model.EntryPlanned
	}
	result, err := conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO calendar_entries (household_id, chore_id, assignee_id, date, status) VALUES (?, ?, ?, ?, ?)`,
		e.HouseholdID, e.ChoreID, e.AssigneeID, e.Date.UTC(), e.Status,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert entry: %w", apperr.ErrDuplicateEntry)
	}
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *CalendarStore) GetByID(ctx context.Context, id int64) (*model.CalendarEntry, error) {
	row := conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+entryCols+` FROM calendar_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// Update writes the mutable fields of e back to storage.
func (s *CalendarStore) Update(ctx context.Context, e *model.CalendarEntry) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE calendar_entries SET assignee_id = ?, date = ?, status = ?, submitted_at = ?, approved_at = ? WHERE id = ?`,
		e.AssigneeID, e.Date.UTC(), e.Status, nullTime(e.SubmittedAt), nullTime(e.ApprovedAt), e.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("update entry: %w", apperr.ErrDuplicateEntry)
	}
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

func (s *CalendarStore) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `DELETE FROM calendar_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Exists reports whether an entry with the given identity and status exists.
func (s *CalendarStore) Exists(ctx context.Context, householdID, choreID, assigneeID int64, date time.Time, status model.EntryStatus) (bool, error) {
	var n int
	err := conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM calendar_entries
		 WHERE household_id = ? AND chore_id = ? AND assignee_id = ? AND date = ? AND status = ?`,
		householdID, choreID, assigneeID, date.UTC(), status,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check entry exists: %w", err)
	}
	return n > 0, nil
}

// EntryFilter narrows List. Zero values are ignored.
type EntryFilter struct {
	HouseholdID int64
	From        time.Time
	To          time.Time
	Status      model.EntryStatus
}

func (s *CalendarStore) List(ctx context.Context, f EntryFilter) ([]model.CalendarEntry, error) {
	var where []string
	var args []any
	if f.HouseholdID != 0 {
		where = append(where, "household_id = ?")
		args = append(args, f.HouseholdID)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where = append(where, "date < ?")
		args = append(args, f.To.UTC())
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}

	query := `SELECT ` + entryCols + ` FROM calendar_entries`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date ASC, id ASC`

	return s.query(ctx, query, args...)
}

// ListByStatus returns entries in the given status across one household, or
// every household when householdID is 0, in the order they were approved.
func (s *CalendarStore) ListByStatus(ctx context.Context, householdID int64, status model.EntryStatus) ([]model.CalendarEntry, error) {
	query := `SELECT ` + entryCols + ` FROM calendar_entries WHERE status = ?`
	args := []any{status}
	if householdID != 0 {
		query += ` AND household_id = ?`
		args = append(args, householdID)
	}
	query += ` ORDER BY approved_at ASC, id ASC`
	return s.query(ctx, query, args...)
}

func (s *CalendarStore) query(ctx context.Context, query string, args ...any) ([]model.CalendarEntry, error) {
	rows, err := conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []model.CalendarEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
