// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/quill/internal/models"
)

func TestGetDashboardTotals(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ada := insertTestUser(t, db, "Ada", "ada@example.com", models.RoleAuthor)
	bob := insertTestUser(t, db, "Bob", "bob@example.com", models.RoleAuthor)

	popular := insertTestArticle(t, db, ada.ID, "Popular", models.StatusPublished, testDay)
	unread := insertTestArticle(t, db, ada.ID, "Unread", models.StatusDraft, testDay.Add(time.Hour))
	removed := insertTestArticle(t, db, ada.ID, "Removed", models.StatusPublished, testDay.Add(2*time.Hour))
	other := insertTestArticle(t, db, bob.ID, "Bob's", models.StatusPublished, testDay)

	// {day1: 3, day2: 4} sums to 7.
	mustUpsert(t, db, popular.ID, testDay, 3)
	mustUpsert(t, db, popular.ID, testDay.Add(24*time.Hour), 4)
	mustUpsert(t, db, removed.ID, testDay, 10)
	mustUpsert(t, db, other.ID, testDay, 99)

	if err := db.SoftDeleteArticle(ctx, removed.ID, time.Now()); err != nil {
		t.Fatalf("SoftDeleteArticle() error = %v", err)
	}

	// Raw reads are not part of the dashboard until aggregated.
	insertTestRead(t, db, unread.ID, testDay.Add(3*time.Hour))

	entries, err := db.GetDashboardTotals(ctx, ada.ID)
	if err != nil {
		t.Fatalf("GetDashboardTotals() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries %+v, want 2 non-deleted articles", len(entries), entries)
	}

	if entries[0].Title != "Unread" || entries[0].TotalViews != 0 {
		t.Errorf("entries[0] = %+v, want Unread with 0 views", entries[0])
	}
	if entries[1].Title != "Popular" || entries[1].TotalViews != 7 {
		t.Errorf("entries[1] = %+v, want Popular with 7 views", entries[1])
	}
	if !entries[1].CreatedAt.Equal(testDay) {
		t.Errorf("CreatedAt = %v, want %v", entries[1].CreatedAt, testDay)
	}
}

func TestGetDashboardTotals_NoArticles(t *testing.T) {
	db := setupTestDB(t)

	entries, err := db.GetDashboardTotals(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetDashboardTotals() error = %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("entries = %#v, want empty non-nil slice", entries)
	}
}

func mustUpsert(t *testing.T, db *DB, articleID string, day time.Time, delta int64) {
	t.Helper()
	if err := db.UpsertDailyAggregate(context.Background(), articleID, day, delta); err != nil {
		t.Fatalf("UpsertDailyAggregate(%s) error = %v", articleID, err)
	}
}
