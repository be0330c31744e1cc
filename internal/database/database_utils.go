// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/quill/internal/metrics"
)

// defaultQueryTimeout applies to contexts without a deadline.
const defaultQueryTimeout = 30 * time.Second

// ensureContext returns ctx, adding the default timeout when it has no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultQueryTimeout)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, defaultQueryTimeout)
	}

	return ctx, func() {}
}

// observe records query latency and errors. Lookup misses and constraint
// outcomes mapped to sentinels are not counted as errors.
func observe(operation, table string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailTaken) {
		err = nil
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// GetDatabasePath returns the path to the database file
func (db *DB) GetDatabasePath() string {
	return db.cfg.Path
}

// utcDay truncates t to midnight UTC.
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
