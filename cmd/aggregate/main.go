// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package main runs one daily aggregation outside the server.
//
// Without flags it aggregates yesterday's UTC window, the same run the
// scheduler performs at midnight. -date backfills a specific day:
//
//	./quill-aggregate -date 2026-03-14
//
// It reads the same configuration as the server (DUCKDB_PATH, ANALYTICS_*).
//
// DuckDB holds an exclusive lock on the database file while the server runs.
// Against the same DUCKDB_PATH the tool then fails at startup with a lock
// error and exits 1. Stop the server before a backfill. The overlap guard
// (ErrRunInProgress) only covers runs inside one process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/quill/internal/analytics"
	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/logging"
)

const dateLayout = "2006-01-02"

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: quill-aggregate [-date YYYY-MM-DD]\n\n")
	fmt.Fprintf(w, "Aggregates one UTC day of read logs into daily analytics.\n")
	fmt.Fprintf(w, "Stop the server first: DuckDB locks DUCKDB_PATH to a single process,\n")
	fmt.Fprintf(w, "so a run against a file the server holds fails to open it and exits 1.\n\n")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
}

func main() {
	date := flag.String("date", "", "UTC day to aggregate (YYYY-MM-DD). Defaults to yesterday.")
	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	var start time.Time
	if *date != "" {
		start, err = time.ParseInLocation(dateLayout, *date, time.UTC)
		if err != nil {
			logging.Fatal().Err(err).Str("date", *date).Msg("Invalid -date, want YYYY-MM-DD")
		}
	}

	os.Exit(run(cfg, start))
}

// run returns the process exit code. A zero start aggregates yesterday.
func run(cfg *config.Config, start time.Time) int {
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Error().Err(err).
			Str("path", cfg.Database.Path).
			Msg("Failed to initialize database (is the server running against the same file?)")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := analytics.NewEngine(db, analytics.EngineConfig{
		Transactional:         cfg.Analytics.Transactional,
		SkipAggregatedWindows: cfg.Analytics.SkipAggregatedWindows,
	})

	var result *analytics.RunResult
	if start.IsZero() {
		result, err = engine.Run(ctx)
	} else {
		result, err = engine.RunWindow(ctx, start)
	}

	switch {
	case errors.Is(err, analytics.ErrWindowAlreadyAggregated):
		logging.Warn().Err(err).Msg("Window skipped")
		return 0
	case err != nil:
		logging.Error().Err(err).Msg("Aggregation failed")
		return 1
	}

	logging.Info().
		Time("window_start", result.WindowStart).
		Int("articles", result.ArticlesAggregated).
		Int64("views", result.ViewsAggregated).
		Dur("duration", result.Duration).
		Msg("Aggregation complete")
	return 0
}
