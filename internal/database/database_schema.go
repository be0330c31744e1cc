// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
database_schema.go - Database Schema Management

Tables:
  - users: accounts; email is unique
  - articles: authored content; deleted_at marks a soft delete
  - read_logs: append-only read events, one per article-detail view
  - daily_analytics: per-article, per-UTC-day counters keyed by (article_id, date)
  - aggregation_runs: one row per successfully aggregated window

Timestamps are TIMESTAMP columns holding UTC. Dates are DATE columns.

Foreign keys are not declared: DuckDB rejects UPDATEs of rows referenced
by a foreign key, and articles are soft-deleted with an UPDATE.

Index Strategy:
  - read_logs(read_at): the daily window scan
  - articles(author_id): author listings and the dashboard
  - articles(created_at): newest-first ordering
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('author', 'reader')),
			created_at TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			category TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Draft' CHECK (status IN ('Draft', 'Published')),
			author_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			deleted_at TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS read_logs (
			id TEXT PRIMARY KEY,
			article_id TEXT NOT NULL,
			reader_id TEXT,
			read_at TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS daily_analytics (
			article_id TEXT NOT NULL,
			date DATE NOT NULL,
			view_count BIGINT NOT NULL DEFAULT 0 CHECK (view_count >= 0),
			PRIMARY KEY (article_id, date)
		);`,

		`CREATE TABLE IF NOT EXISTS aggregation_runs (
			window_start DATE PRIMARY KEY,
			articles_aggregated INTEGER NOT NULL,
			views_aggregated BIGINT NOT NULL,
			completed_at TIMESTAMP NOT NULL
		);`,
	}
}

// createIndexes creates secondary indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_read_logs_read_at ON read_logs(read_at);`,
		`CREATE INDEX IF NOT EXISTS idx_articles_author_id ON articles(author_id);`,
		`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at);`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
