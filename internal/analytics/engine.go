// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package analytics implements the daily read aggregation job.

The Engine folds one UTC day of raw read events into the per-(article, day)
counter table read by the author dashboard. The Scheduler triggers the Engine
on a cron cadence, midnight UTC by default.

# Window

Run aggregates the half-open window [yesterday 00:00 UTC, today 00:00 UTC)
computed from the engine clock. RunWindow aggregates the UTC day containing
an arbitrary start and backs the manual trigger in cmd/aggregate.

# Run Policy

  - Overlapping runs are rejected with ErrRunInProgress.
  - Transactional runs apply every upsert and the watermark atomically.
  - Non-transactional runs commit each upsert on its own.
  - Re-running a window increments the counters again unless
    SkipAggregatedWindows is set, in which case ErrWindowAlreadyAggregated
    is returned.
*/
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/models"
)

var (
	// ErrRunInProgress is returned when a run is triggered while another is active.
	ErrRunInProgress = errors.New("analytics run already in progress")

	// ErrWindowAlreadyAggregated is returned when SkipAggregatedWindows is set
	// and the window has a watermark.
	ErrWindowAlreadyAggregated = errors.New("analytics window already aggregated")
)

// Run results recorded in quill_aggregation_runs_total.
const (
	resultSuccess = "success"
	resultError   = "error"
	resultSkipped = "skipped"
	resultOverlap = "overlap"
)

// Store is the persistence used by the Engine. *database.DB implements it.
type Store interface {
	CountReadsGroupedByArticle(ctx context.Context, start, end time.Time) ([]models.ArticleReadCount, error)
	UpsertDailyAggregate(ctx context.Context, articleID string, date time.Time, delta int64) error
	ApplyDailyAggregates(ctx context.Context, date time.Time, counts []models.ArticleReadCount, watermark *models.AggregationRun) error
	RecordAggregationRun(ctx context.Context, run *models.AggregationRun) error
	HasAggregationRun(ctx context.Context, windowStart time.Time) (bool, error)
}

// EngineConfig controls the run policy.
type EngineConfig struct {
	Transactional         bool
	SkipAggregatedWindows bool
}

// RunResult describes one successful run.
type RunResult struct {
	WindowStart        time.Time
	WindowEnd          time.Time
	ArticlesAggregated int
	ViewsAggregated    int64
	Duration           time.Duration
}

// Engine aggregates read events into daily counters.
type Engine struct {
	store  Store
	cfg    EngineConfig
	now    func() time.Time
	logger zerolog.Logger

	running atomic.Bool

	mu   sync.RWMutex
	last *RunResult
}

// NewEngine creates an Engine over store.
func NewEngine(store Store, cfg EngineConfig) *Engine {
	return &Engine{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: logging.WithComponent("analytics-engine"),
	}
}

// SetClock replaces the clock used to compute the Run window.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// SetLogger replaces the engine logger.
func (e *Engine) SetLogger(logger zerolog.Logger) {
	e.logger = logger
}

// Window returns the [start, end) range Run would aggregate at now.
func Window(now time.Time) (start, end time.Time) {
	end = truncateDay(now)
	return end.AddDate(0, 0, -1), end
}

// Run aggregates yesterday's reads, relative to the engine clock.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	start, end := Window(e.now())
	return e.run(ctx, start, end)
}

// RunWindow aggregates the UTC day containing start.
func (e *Engine) RunWindow(ctx context.Context, start time.Time) (*RunResult, error) {
	day := truncateDay(start)
	return e.run(ctx, day, day.AddDate(0, 0, 1))
}

// LastResult returns the most recent successful run, or nil.
func (e *Engine) LastResult() *RunResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// IsRunning reports whether a run is active.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

func (e *Engine) run(ctx context.Context, start, end time.Time) (result *RunResult, err error) {
	if !e.running.CompareAndSwap(false, true) {
		metrics.RecordAggregationRun(resultOverlap, 0, 0)
		e.logger.Warn().
			Time("window_start", start).
			Msg("Analytics run already in progress, trigger rejected")
		return nil, ErrRunInProgress
	}
	defer e.running.Store(false)

	begin := time.Now()
	e.logger.Info().
		Time("window_start", start).
		Time("window_end", end).
		Msg("Running daily Analytics Engine job...")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analytics run panicked: %v", r)
			result = nil
		}
		switch {
		case err == nil:
			metrics.RecordAggregationRun(resultSuccess, result.Duration, result.ArticlesAggregated)
		case errors.Is(err, ErrWindowAlreadyAggregated):
			metrics.RecordAggregationRun(resultSkipped, time.Since(begin), 0)
		default:
			metrics.RecordAggregationRun(resultError, time.Since(begin), 0)
			e.logger.Error().
				Err(err).
				Time("window_start", start).
				Msg("Analytics Job Error")
		}
	}()

	if e.cfg.SkipAggregatedWindows {
		done, err := e.store.HasAggregationRun(ctx, start)
		if err != nil {
			return nil, fmt.Errorf("check watermark: %w", err)
		}
		if done {
			e.logger.Info().
				Time("window_start", start).
				Msg("Analytics window already aggregated, skipping")
			return nil, ErrWindowAlreadyAggregated
		}
	}

	counts, err := e.store.CountReadsGroupedByArticle(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count reads: %w", err)
	}

	var views int64
	for _, c := range counts {
		views += c.Count
	}
	watermark := &models.AggregationRun{
		WindowStart:        start,
		ArticlesAggregated: len(counts),
		ViewsAggregated:    views,
	}

	if e.cfg.Transactional {
		watermark.CompletedAt = e.now().UTC()
		if err := e.store.ApplyDailyAggregates(ctx, start, counts, watermark); err != nil {
			return nil, fmt.Errorf("apply aggregates: %w", err)
		}
	} else {
		for _, c := range counts {
			if err := e.store.UpsertDailyAggregate(ctx, c.ArticleID, start, c.Count); err != nil {
				return nil, fmt.Errorf("upsert aggregate: %w", err)
			}
		}
		watermark.CompletedAt = e.now().UTC()
		if err := e.store.RecordAggregationRun(ctx, watermark); err != nil {
			return nil, fmt.Errorf("record watermark: %w", err)
		}
	}

	result = &RunResult{
		WindowStart:        start,
		WindowEnd:          end,
		ArticlesAggregated: len(counts),
		ViewsAggregated:    views,
		Duration:           time.Since(begin),
	}

	e.mu.Lock()
	e.last = result
	e.mu.Unlock()

	e.logger.Info().
		Int("articles", result.ArticlesAggregated).
		Int64("views", result.ViewsAggregated).
		Dur("duration", result.Duration).
		Msgf("Analytics aggregated for %d articles.", result.ArticlesAggregated)

	return result, nil
}

// truncateDay returns 00:00 UTC of t's UTC day.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
