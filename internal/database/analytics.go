// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/quill/internal/database/query"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/models"
)

// upsertDailyAggregateSQL creates the (article, date) row or increments it.
// The date parameter is bound as a TIMESTAMP and truncated to DATE.
const upsertDailyAggregateSQL = `INSERT INTO daily_analytics (article_id, date, view_count)
VALUES (?, CAST(CAST(? AS TIMESTAMP) AS DATE), ?)
ON CONFLICT (article_id, date) DO UPDATE SET view_count = daily_analytics.view_count + EXCLUDED.view_count`

const upsertAggregationRunSQL = `INSERT INTO aggregation_runs (window_start, articles_aggregated, views_aggregated, completed_at)
VALUES (CAST(CAST(? AS TIMESTAMP) AS DATE), ?, ?, ?)
ON CONFLICT (window_start) DO UPDATE SET
	articles_aggregated = EXCLUDED.articles_aggregated,
	views_aggregated = EXCLUDED.views_aggregated,
	completed_at = EXCLUDED.completed_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CountReadsGroupedByArticle counts read events per article with read_at in
// the half-open window [start, end). Articles without reads have no row.
func (db *DB) CountReadsGroupedByArticle(ctx context.Context, start, end time.Time) (counts []models.ArticleReadCount, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(begin time.Time) { observe("SELECT", "read_logs", begin, err) }(time.Now())

	where, args := query.NewWhereBuilder().
		AddHalfOpenRange("read_at", start.UTC(), end.UTC()).
		BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT article_id, COUNT(*) FROM read_logs `+where+` GROUP BY article_id ORDER BY article_id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count reads: %w", err)
	}
	defer closeWithLog(rows, "rows")

	counts = []models.ArticleReadCount{}
	for rows.Next() {
		var c models.ArticleReadCount
		if err := rows.Scan(&c.ArticleID, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan read count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// UpsertDailyAggregate adds delta to the (articleID, date) counter, creating
// the row if absent. date is truncated to its UTC day.
func (db *DB) UpsertDailyAggregate(ctx context.Context, articleID string, date time.Time, delta int64) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPSERT", "daily_analytics", start, err) }(time.Now())

	return upsertDailyAggregate(ctx, db.conn, articleID, date, delta)
}

func upsertDailyAggregate(ctx context.Context, ex execer, articleID string, date time.Time, delta int64) error {
	if _, err := ex.ExecContext(ctx, upsertDailyAggregateSQL, articleID, utcDay(date), delta); err != nil {
		return fmt.Errorf("failed to upsert daily aggregate for article %s: %w", articleID, err)
	}
	return nil
}

// ApplyDailyAggregates upserts every count for date and, when watermark is
// non-nil, records it, all in one transaction. On error nothing is applied.
func (db *DB) ApplyDailyAggregates(ctx context.Context, date time.Time, counts []models.ArticleReadCount, watermark *models.AggregationRun) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPSERT", "daily_analytics", start, err) }(time.Now())

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	for _, c := range counts {
		if err = upsertDailyAggregate(ctx, tx, c.ArticleID, date, c.Count); err != nil {
			return err
		}
	}

	if watermark != nil {
		if err = recordAggregationRun(ctx, tx, watermark); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		if isTransactionConflict(err) {
			return fmt.Errorf("daily aggregate transaction conflict: %w", err)
		}
		return fmt.Errorf("failed to commit daily aggregates: %w", err)
	}
	return nil
}

// RecordAggregationRun writes the watermark row for run.WindowStart,
// replacing any earlier row for the same window.
func (db *DB) RecordAggregationRun(ctx context.Context, run *models.AggregationRun) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPSERT", "aggregation_runs", start, err) }(time.Now())

	return recordAggregationRun(ctx, db.conn, run)
}

func recordAggregationRun(ctx context.Context, ex execer, run *models.AggregationRun) error {
	if run.CompletedAt.IsZero() {
		run.CompletedAt = time.Now().UTC()
	}
	_, err := ex.ExecContext(ctx, upsertAggregationRunSQL,
		utcDay(run.WindowStart), run.ArticlesAggregated, run.ViewsAggregated, run.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record aggregation run: %w", err)
	}
	return nil
}

// HasAggregationRun reports whether a watermark exists for windowStart's day.
func (db *DB) HasAggregationRun(ctx context.Context, windowStart time.Time) (exists bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "aggregation_runs", start, err) }(time.Now())

	var n int64
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM aggregation_runs WHERE window_start = CAST(CAST(? AS TIMESTAMP) AS DATE)`,
		utcDay(windowStart)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check aggregation run: %w", err)
	}
	return n > 0, nil
}

// GetLastAggregationRun returns the most recently completed run, or
// ErrNotFound when the job has never succeeded.
func (db *DB) GetLastAggregationRun(ctx context.Context) (run *models.AggregationRun, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "aggregation_runs", start, err) }(time.Now())

	var r models.AggregationRun
	err = db.conn.QueryRowContext(ctx,
		`SELECT window_start, articles_aggregated, views_aggregated, completed_at
		FROM aggregation_runs ORDER BY completed_at DESC LIMIT 1`).
		Scan(&r.WindowStart, &r.ArticlesAggregated, &r.ViewsAggregated, &r.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last aggregation run: %w", err)
	}
	r.WindowStart = r.WindowStart.UTC()
	r.CompletedAt = r.CompletedAt.UTC()
	return &r, nil
}

// GetDailyAggregates returns an article's counters ordered by date.
func (db *DB) GetDailyAggregates(ctx context.Context, articleID string) (aggs []models.DailyAggregate, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "daily_analytics", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT article_id, date, view_count FROM daily_analytics WHERE article_id = ? ORDER BY date`,
		articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily aggregates: %w", err)
	}
	defer closeWithLog(rows, "rows")

	aggs = []models.DailyAggregate{}
	for rows.Next() {
		var a models.DailyAggregate
		if err := rows.Scan(&a.ArticleID, &a.Date, &a.ViewCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily aggregate: %w", err)
		}
		a.Date = a.Date.UTC()
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}
