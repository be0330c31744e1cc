// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/quill/internal/models"
)

// GetDashboardTotals returns the author's non-deleted articles, newest
// first, each with the sum of its daily aggregates. The raw read log is not
// consulted.
func (db *DB) GetDashboardTotals(ctx context.Context, authorID string) (entries []models.DashboardEntry, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "daily_analytics", start, err) }(time.Now())

	// SUM over BIGINT yields HUGEINT in DuckDB; cast back for int64 scans.
	rows, err := db.conn.QueryContext(ctx, `
		SELECT a.title, a.created_at, CAST(COALESCE(SUM(d.view_count), 0) AS BIGINT) AS total_views
		FROM articles a
		LEFT JOIN daily_analytics d ON d.article_id = a.id
		WHERE a.author_id = ? AND a.deleted_at IS NULL
		GROUP BY a.id, a.title, a.created_at
		ORDER BY a.created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard totals: %w", err)
	}
	defer closeWithLog(rows, "rows")

	entries = []models.DashboardEntry{}
	for rows.Next() {
		var e models.DashboardEntry
		if err := rows.Scan(&e.Title, &e.CreatedAt, &e.TotalViews); err != nil {
			return nil, fmt.Errorf("failed to scan dashboard entry: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
