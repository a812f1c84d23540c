// Package stats maintains the running per-period point totals that feed the
// leaderboard. Totals are credited incrementally on every approval and can be
// rebuilt from the approved-entry history at any time.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/period"
	"github.com/dukerupert/choreboard/internal/store"
)

// Periods lists the period types every approval is credited to.
var Periods = []model.PeriodType{model.PeriodWeek, model.PeriodMonth}

type StatsStore interface {
	AddPoints(ctx context.Context, key store.StatsKey, userID int64, points int) error
	DeleteAll(ctx context.Context, householdID int64) error
	InsertRecords(ctx context.Context, records []model.StatsRecord) error
}

type EntryStore interface {
	ListByStatus(ctx context.Context, householdID int64, status model.EntryStatus) ([]model.CalendarEntry, error)
}

type ChoreStore interface {
	PointsByID(ctx context.Context, householdID int64) (map[int64]int, error)
}

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Aggregator struct {
	stats   StatsStore
	entries EntryStore
	chores  ChoreStore
	tx      Transactor
	logger  *slog.Logger
}

func NewAggregator(ss StatsStore, es EntryStore, cs ChoreStore, tx Transactor, logger *slog.Logger) *Aggregator {
	return &Aggregator{stats: ss, entries: es, chores: cs, tx: tx, logger: logger}
}

// CreditPoints adds points to the user's total for the period of type pt that
// contains date. It only ever adds, so a retried credit after a rolled-back
// transaction cannot double count.
func (a *Aggregator) CreditPoints(ctx context.Context, householdID, userID int64, date time.Time, points int, pt model.PeriodType) error {
	if points < 0 {
		return fmt.Errorf("credit %d points: %w", points, apperr.ErrInvalidInput)
	}
	b, err := period.For(pt, date)
	if err != nil {
		return fmt.Errorf("credit points: %w", apperr.ErrInvalidInput)
	}
	key := store.StatsKey{HouseholdID: householdID, PeriodType: pt, Start: b.Start, End: b.End}
	return a.tx.InTx(ctx, func(ctx context.Context) error {
		return a.stats.AddPoints(ctx, key, userID, points)
	})
}

// CreditApproval credits an approved entry's points to both the week and the
// month containing date.
func (a *Aggregator) CreditApproval(ctx context.Context, householdID, userID int64, date time.Time, points int) error {
	return a.tx.InTx(ctx, func(ctx context.Context) error {
		for _, pt := range Periods {
			if err := a.CreditPoints(ctx, householdID, userID, date, points, pt); err != nil {
				return fmt.Errorf("credit %s: %w", pt, err)
			}
		}
		return nil
	})
}

// RebuildReport summarises a rebuild.
type RebuildReport struct {
	Entries int `json:"entries"`
	Records int `json:"records"`
}

// RebuildAll discards the stats of one household (or all when householdID is
// 0) and recomputes them from every approved entry using current chore point
// values.
func (a *Aggregator) RebuildAll(ctx context.Context, householdID int64) (RebuildReport, error) {
	var report RebuildReport
	err := a.tx.InTx(ctx, func(ctx context.Context) error {
		entries, err := a.entries.ListByStatus(ctx, householdID, model.EntryApproved)
		if err != nil {
			return err
		}
		points, err := a.chores.PointsByID(ctx, householdID)
		if err != nil {
			return err
		}

		records := BuildRecords(entries, points)

		if err := a.stats.DeleteAll(ctx, householdID); err != nil {
			return err
		}
		if err := a.stats.InsertRecords(ctx, records); err != nil {
			return err
		}
		report = RebuildReport{Entries: len(entries), Records: len(records)}
		return nil
	})
	if err != nil {
		return RebuildReport{}, fmt.Errorf("rebuild stats: %w", err)
	}

	a.logger.Info("stats rebuilt", "household_id", householdID, "entries", report.Entries, "records", report.Records)
	return report, nil
}

type recordKey struct {
	householdID int64
	periodType  model.PeriodType
	start       int64
}

// BuildRecords groups approved entries into stats records. Users appear in
// each record in the order of their first credit, following entries' order.
// Entries whose chore is unknown are skipped.
func BuildRecords(entries []model.CalendarEntry, points map[int64]int) []model.StatsRecord {
	index := make(map[recordKey]int)
	var records []model.StatsRecord

	for _, e := range entries {
		p, ok := points[e.ChoreID]
		if !ok {
			continue
		}
		for _, pt := range Periods {
			b, _ := period.For(pt, e.Date)
			k := recordKey{householdID: e.HouseholdID, periodType: pt, start: b.Start.Unix()}
			i, ok := index[k]
			if !ok {
				i = len(records)
				index[k] = i
				records = append(records, model.StatsRecord{
					HouseholdID: e.HouseholdID,
					PeriodType:  pt,
					PeriodStart: b.Start,
					PeriodEnd:   b.End,
				})
			}
			records[i].Points = addUserPoints(records[i].Points, e.AssigneeID, p)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].HouseholdID != records[j].HouseholdID {
			return records[i].HouseholdID < records[j].HouseholdID
		}
		if records[i].PeriodType != records[j].PeriodType {
			return records[i].PeriodType < records[j].PeriodType
		}
		return records[i].PeriodStart.Before(records[j].PeriodStart)
	})
	return records
}

func addUserPoints(list []model.UserPoints, userID int64, points int) []model.UserPoints {
	for i := range list {
		if list[i].UserID == userID {
			list[i].Points += points
			return list
		}
	}
	return append(list, model.UserPoints{UserID: userID, Points: points})
}
