// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package query provides SQL query building utilities for the database package.
package query

import (
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddEquals("a.category", "Tech")
//	wb.AddContainsFold("a.title", "go")
//	whereClause, args := wb.Build()
//	// a.category = ? AND contains(lower(a.title), lower(?))
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
//
// Parameters:
//   - clause: SQL condition fragment (e.g., "a.status = ?")
//   - args: Arguments to bind to placeholders in the clause
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEquals adds "column = ?". Empty values are skipped.
func (wb *WhereBuilder) AddEquals(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	return wb.AddClause(column+" = ?", value)
}

// AddContainsFold adds a case-insensitive substring match on column.
// Empty values are skipped. The value is bound as a parameter, so LIKE
// wildcards in user input match literally.
func (wb *WhereBuilder) AddContainsFold(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	return wb.AddClause("contains(lower("+column+"), lower(?))", value)
}

// AddHalfOpenRange adds "column >= start AND column < end".
func (wb *WhereBuilder) AddHalfOpenRange(column string, start, end time.Time) *WhereBuilder {
	wb.AddClause(column+" >= ?", start)
	return wb.AddClause(column+" < ?", end)
}

// AddIsNull adds "column IS NULL".
func (wb *WhereBuilder) AddIsNull(column string) *WhereBuilder {
	return wb.AddClause(column + " IS NULL")
}

// Build returns the WHERE clause without the "WHERE" keyword, and its args.
// An empty builder yields "1=1".
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the clause prefixed with "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
