// Command rebuild-stats recomputes every stats record from the approved
// entry history using current chore point values.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dukerupert/choreboard/internal/config"
	"github.com/dukerupert/choreboard/internal/database"
	"github.com/dukerupert/choreboard/internal/logging"
	"github.com/dukerupert/choreboard/internal/stats"
	"github.com/dukerupert/choreboard/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var householdID int64
	flagSet := pflag.NewFlagSet("rebuild-stats", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flagSet.Int64Var(&householdID, "household", 0, "rebuild only this household (default: all)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if householdID < 0 {
		return fmt.Errorf("--household must not be negative")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if householdID != 0 {
		h, err := store.NewHouseholdStore(db).GetByID(ctx, householdID)
		if err != nil {
			return err
		}
		if h == nil {
			return fmt.Errorf("household %d not found", householdID)
		}
	}

	agg := stats.NewAggregator(
		store.NewStatsStore(db),
		store.NewCalendarStore(db),
		store.NewChoreStore(db),
		store.NewTransactor(db, store.DefaultRetryPolicy),
		logger.With("component", "stats"),
	)
	report, err := agg.RebuildAll(ctx, householdID)
	if err != nil {
		return err
	}

	fmt.Printf("rebuilt %d stats records from %d approved entries\n", report.Records, report.Entries)
	return nil
}
