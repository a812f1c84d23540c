package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

// StatsKey identifies one stats record.
type StatsKey struct {
	HouseholdID int64
	PeriodType  model.PeriodType
	Start       time.Time
	End         time.Time
}

type StatsStore struct {
	db *sql.DB
}

func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

const statsCols = `id, household_id, period_type, period_start, period_end`

// FindOrCreate returns the record for key, inserting an empty one if absent.
func (s *StatsStore) FindOrCreate(ctx context.Context, key StatsKey) (*model.StatsRecord, error) {
	id, err := s.ensureRecord(ctx, conn(ctx, s.db), key)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *StatsStore) ensureRecord(ctx context.Context, q querier, key StatsKey) (int64, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO stats_records (household_id, period_type, period_start, period_end) VALUES (?, ?, ?, ?)
		 ON CONFLICT(household_id, period_type, period_start, period_end) DO NOTHING`,
		key.HouseholdID, key.PeriodType, key.Start.UTC(), key.End.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert stats record: %w", err)
	}

	var id int64
	err = q.QueryRowContext(ctx,
		`SELECT id FROM stats_records WHERE household_id = ? AND period_type = ? AND period_start = ? AND period_end = ?`,
		key.HouseholdID, key.PeriodType, key.Start.UTC(), key.End.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("find stats record: %w", err)
	}
	return id, nil
}

// AddPoints atomically adds points to the user's total in the record for key,
// creating the record and the user's row when missing. The increment is a
// single upsert statement, so concurrent credits never lose updates.
func (s *StatsStore) AddPoints(ctx context.Context, key StatsKey, userID int64, points int) error {
	q := conn(ctx, s.db)
	id, err := s.ensureRecord(ctx, q, key)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO stats_points (stats_id, user_id, points) VALUES (?, ?, ?)
		 ON CONFLICT(stats_id, user_id) DO UPDATE SET points = points + excluded.points`,
		id, userID, points,
	)
	if err != nil {
		return fmt.Errorf("add stats points: %w", err)
	}
	return nil
}

func (s *StatsStore) GetByID(ctx context.Context, id int64) (*model.StatsRecord, error) {
	q := conn(ctx, s.db)
	var r model.StatsRecord
	err := q.QueryRowContext(ctx, `SELECT `+statsCols+` FROM stats_records WHERE id = ?`, id).
		Scan(&r.ID, &r.HouseholdID, &r.PeriodType, &r.PeriodStart, &r.PeriodEnd)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stats record: %w", err)
	}
	if err := s.loadPoints(ctx, q, []*model.StatsRecord{&r}); err != nil {
		return nil, err
	}
	return &r, nil
}

// Get returns the record for key, or nil when none exists.
func (s *StatsStore) Get(ctx context.Context, key StatsKey) (*model.StatsRecord, error) {
	var id int64
	err := conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT id FROM stats_records WHERE household_id = ? AND period_type = ? AND period_start = ? AND period_end = ?`,
		key.HouseholdID, key.PeriodType, key.Start.UTC(), key.End.UTC(),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find stats record: %w", err)
	}
	return s.GetByID(ctx, id)
}

// ListByHouseholdAndType returns up to limit records, newest period first.
func (s *StatsStore) ListByHouseholdAndType(ctx context.Context, householdID int64, pt model.PeriodType, limit int) ([]model.StatsRecord, error) {
	q := conn(ctx, s.db)
	rows, err := q.QueryContext(ctx,
		`SELECT `+statsCols+` FROM stats_records
		 WHERE household_id = ? AND period_type = ?
		 ORDER BY period_start DESC LIMIT ?`,
		householdID, pt, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list stats records: %w", err)
	}

	var records []model.StatsRecord
	for rows.Next() {
		var r model.StatsRecord
		if err := rows.Scan(&r.ID, &r.HouseholdID, &r.PeriodType, &r.PeriodStart, &r.PeriodEnd); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan stats record: %w", err)
		}
		records = append(records, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stats records: %w", err)
	}

	ptrs := make([]*model.StatsRecord, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}
	if err := s.loadPoints(ctx, q, ptrs); err != nil {
		return nil, err
	}
	return records, nil
}

// loadPoints fills in the per-user rows, in order of first credit.
func (s *StatsStore) loadPoints(ctx context.Context, q querier, records []*model.StatsRecord) error {
	for _, r := range records {
		r.PeriodStart = r.PeriodStart.UTC()
		r.PeriodEnd = r.PeriodEnd.UTC()
		r.Points = []model.UserPoints{}

		rows, err := q.QueryContext(ctx,
			`SELECT user_id, points FROM stats_points WHERE stats_id = ? ORDER BY id ASC`, r.ID,
		)
		if err != nil {
			return fmt.Errorf("list stats points: %w", err)
		}
		for rows.Next() {
			var up model.UserPoints
			if err := rows.Scan(&up.UserID, &up.Points); err != nil {
				rows.Close()
				return fmt.Errorf("scan stats points: %w", err)
			}
			r.Points = append(r.Points, up)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("list stats points: %w", err)
		}
	}
	return nil
}

// DeleteAll removes the stats of one household, or of every household when
// householdID is 0.
func (s *StatsStore) DeleteAll(ctx context.Context, householdID int64) error {
	q := conn(ctx, s.db)
	var err error
	if householdID == 0 {
		_, err = q.ExecContext(ctx, `DELETE FROM stats_records`)
	} else {
		_, err = q.ExecContext(ctx, `DELETE FROM stats_records WHERE household_id = ?`, householdID)
	}
	if err != nil {
		return fmt.Errorf("delete stats records: %w", err)
	}
	return nil
}

// InsertRecords bulk-inserts complete records. Callers run it in a transaction
// after DeleteAll.
func (s *StatsStore) InsertRecords(ctx context.Context, records []model.StatsRecord) error {
	q := conn(ctx, s.db)
	for _, r := range records {
		result, err := q.ExecContext(ctx,
			`INSERT INTO stats_records (household_id, period_type, period_start, period_end) VALUES (?, ?, ?, ?)`,
			r.HouseholdID, r.PeriodType, r.PeriodStart.UTC(), r.PeriodEnd.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert stats record: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		for _, up := range r.Points {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO stats_points (stats_id, user_id, points) VALUES (?, ?, ?)`,
				id, up.UserID, up.Points,
			); err != nil {
				return fmt.Errorf("insert stats points: %w", err)
			}
		}
	}
	return nil
}
