// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"runtime"
	"strings"
	"time"
)

// configureConnectionPool sets connection pool limits.
//
//   - max_open: NumCPU() for parallelism
//   - max_idle: 2 for connection reuse
//   - max_lifetime: 1h to prevent stale connections
//   - max_idle_time: 5m for idle connection cleanup
func (db *DB) configureConnectionPool() error {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
	return nil
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update")
}

// isUniqueConstraintError checks if an error is a DuckDB unique or primary key violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}
