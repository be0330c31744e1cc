// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/quill/internal/logging"
)

// Migration represents a versioned database migration.
type Migration struct {
	Version     int       // Unique version number (monotonically increasing)
	Name        string    // Human-readable migration name
	Description string    // Description of what this migration does
	SQL         string    // SQL statement to execute
	AppliedAt   time.Time // When the migration was applied (populated on query)
}

// schemaMigrationsTable creates the migration tracking table
const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at TIMESTAMP NOT NULL
);
`

// getMigrations returns all versioned migrations in order.
//
// Migrations MUST be append-only. Never modify or remove a migration once
// it has shipped.
func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "read_logs_article_index",
			Description: "Index read_logs by article for per-article read lookups",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_read_logs_article_id ON read_logs(article_id);`,
		},
		{
			Version:     2,
			Name:        "articles_category_index",
			Description: "Index articles by category for the public list filter",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);`,
		},
	}
}

// createMigrationsTable creates the schema_migrations table if it doesn't exist
func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, schemaMigrationsTable)
	return err
}

// getAppliedMigrations returns a map of version -> Migration for all applied migrations
func (db *DB) getAppliedMigrations(ctx context.Context) (map[int]Migration, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[m.Version] = m
	}
	return applied, rows.Err()
}

// runVersionedMigrations applies pending migrations in version order. Each
// migration and its schema_migrations row commit together.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	pending := 0
	for _, m := range getMigrations() {
		if _, done := applied[m.Version]; done {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return err
		}
		pending++
	}

	if pending > 0 {
		version, _ := db.GetCurrentSchemaVersion(ctx)
		logging.Info().
			Int("applied", pending).
			Int("schema_version", version).
			Msg("Applied database migrations")
	}
	return nil
}

func (db *DB) applyMigration(ctx context.Context, m Migration) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration v%d: %w", m.Version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("migration v%d (%s): %w", m.Version, m.Name, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`,
		m.Version, m.Name, m.Description, time.Now().UTC()); err != nil {
		return fmt.Errorf("record migration v%d: %w", m.Version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration v%d: %w", m.Version, err)
	}
	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration version
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version int
	err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// GetMigrationHistory returns all applied migrations in order
func (db *DB) GetMigrationHistory(ctx context.Context) ([]Migration, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	history := make([]Migration, 0, len(applied))
	for _, m := range getMigrations() {
		if a, ok := applied[m.Version]; ok {
			history = append(history, a)
		}
	}
	return history, nil
}
