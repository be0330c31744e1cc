// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package query

import (
	"testing"
	"time"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_SkipsEmptyValues(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddEquals("a.category", "").AddContainsFold("a.title", "")

	if !wb.IsEmpty() {
		t.Errorf("Expected empty values to be skipped, got %d clauses", wb.Count())
	}
}

func TestWhereBuilder_ArticleFilters(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddClause("a.status = ?", "Published").
		AddIsNull("a.deleted_at").
		AddEquals("a.category", "Tech").
		AddContainsFold("u.name", "ada").
		AddContainsFold("a.title", "50%")

	whereClause, args := wb.Build()
	expected := "a.status = ? AND a.deleted_at IS NULL AND a.category = ? AND " +
		"contains(lower(u.name), lower(?)) AND contains(lower(a.title), lower(?))"
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}

	wantArgs := []interface{}{"Published", "Tech", "ada", "50%"}
	if len(args) != len(wantArgs) {
		t.Fatalf("Expected %d args, got %d", len(wantArgs), len(args))
	}
	for i := range wantArgs {
		if args[i] != wantArgs[i] {
			t.Errorf("args[%d] = %v, want %v", i, args[i], wantArgs[i])
		}
	}
}

func TestWhereBuilder_AddHalfOpenRange(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	whereClause, args := NewWhereBuilder().AddHalfOpenRange("read_at", start, end).BuildWithPrefix()

	if whereClause != "WHERE read_at >= ? AND read_at < ?" {
		t.Errorf("unexpected clause %q", whereClause)
	}
	if len(args) != 2 || args[0] != start || args[1] != end {
		t.Errorf("unexpected args %v", args)
	}
}
