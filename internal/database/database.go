// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package database is the DuckDB store for users, articles, the read event
// log and the daily aggregate tables.
//
// Tables:
//   - users: accounts with a unique email
//   - articles: authored content, soft-deleted through deleted_at
//   - read_logs: append-only article read events
//   - daily_analytics: one row per (article_id, date) with a cumulative count
//   - aggregation_runs: watermark of successfully aggregated windows
//   - schema_migrations: applied versioned migrations
//
// Every method takes the caller's context. Contexts without a deadline get a
// 30 second default timeout (see ensureContext).
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New creates a new database connection and initializes the schema
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	// Ensure parent directory exists for database file
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Auto-install is disabled: Quill only uses core DuckDB types.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn: conn,
		cfg:  cfg,
	}

	if err := db.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Str("max_memory", maxMemory).
		Msg("Database initialized")

	return db, nil
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	return db.conn.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// initialize creates tables, applies migrations and builds indexes
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}

	if err := db.runVersionedMigrations(); err != nil {
		return err
	}

	if err := db.createIndexes(); err != nil {
		return err
	}

	// Flush schema changes out of the WAL before normal operation.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}

	return nil
}
