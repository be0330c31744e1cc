// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/quill/internal/models"
)

// RecordRead appends one read event for articleID at the current time.
// readerID is nil for anonymous readers.
func (db *DB) RecordRead(ctx context.Context, articleID string, readerID *string) error {
	return db.InsertReadEvent(ctx, &models.ReadEvent{
		ArticleID: articleID,
		ReaderID:  readerID,
	})
}

// InsertReadEvent appends a read event, filling ID and ReadAt when unset.
//
// Re-delivery of an event with an ID already stored is a no-op, so
// at-least-once transports do not double count.
func (db *DB) InsertReadEvent(ctx context.Context, event *models.ReadEvent) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("INSERT", "read_logs", start, err) }(time.Now())

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.ReadAt.IsZero() {
		event.ReadAt = time.Now().UTC()
	}

	var reader interface{}
	if event.ReaderID != nil {
		reader = *event.ReaderID
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO read_logs (id, article_id, reader_id, read_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.ArticleID, reader, event.ReadAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert read event: %w", err)
	}
	return nil
}

// CountReadEvents returns the number of read events for an article.
func (db *DB) CountReadEvents(ctx context.Context, articleID string) (count int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "read_logs", start, err) }(time.Now())

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM read_logs WHERE article_id = ?`, articleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count read events: %w", err)
	}
	return count, nil
}
