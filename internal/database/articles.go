// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/quill/internal/database/query"
	"github.com/tomtom215/quill/internal/models"
)

const articleColumns = `a.id, a.title, a.content, a.category, a.status, a.author_id, a.created_at, a.updated_at, a.deleted_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner, withAuthor bool) (*models.Article, error) {
	var a models.Article
	var deletedAt sql.NullTime
	dest := []interface{}{
		&a.ID, &a.Title, &a.Content, &a.Category, &a.Status, &a.AuthorID,
		&a.CreatedAt, &a.UpdatedAt, &deletedAt,
	}
	var authorName sql.NullString
	if withAuthor {
		dest = append(dest, &authorName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		a.DeletedAt = &t
	}
	if withAuthor {
		a.Author = &models.ArticleAuthor{Name: authorName.String}
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

// CreateArticle inserts an article. Status defaults to Draft.
func (db *DB) CreateArticle(ctx context.Context, article *models.Article) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("INSERT", "articles", start, err) }(time.Now())

	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	if article.Status == "" {
		article.Status = models.StatusDraft
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now().UTC()
	}
	article.UpdatedAt = article.CreatedAt

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO articles (id, title, content, category, status, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID, article.Title, article.Content, article.Category, article.Status,
		article.AuthorID, article.CreatedAt.UTC(), article.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// GetArticle returns an article with its author's name, deleted or not.
// Callers decide how to treat soft-deleted rows. Unknown IDs return ErrNotFound.
func (db *DB) GetArticle(ctx context.Context, id string) (article *models.Article, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "articles", start, err) }(time.Now())

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+articleColumns+`, u.name
		FROM articles a LEFT JOIN users u ON u.id = a.author_id
		WHERE a.id = ?`, id)

	article, err = scanArticle(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// UpdateArticle replaces the editable fields of a non-deleted article and
// bumps updated_at. A missing or deleted article returns ErrNotFound.
func (db *DB) UpdateArticle(ctx context.Context, article *models.Article) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPDATE", "articles", start, err) }(time.Now())

	article.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE articles SET title = ?, content = ?, category = ?, status = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		article.Title, article.Content, article.Category, article.Status, article.UpdatedAt, article.ID)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	return requireAffected(res)
}

// SoftDeleteArticle sets deleted_at on a non-deleted article. A missing or
// already deleted article returns ErrNotFound.
func (db *DB) SoftDeleteArticle(ctx context.Context, id string, at time.Time) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPDATE", "articles", start, err) }(time.Now())

	res, err := db.conn.ExecContext(ctx,
		`UPDATE articles SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return requireAffected(res)
}

// ListArticlesByAuthor returns all of an author's articles, including
// deleted ones, newest first.
func (db *DB) ListArticlesByAuthor(ctx context.Context, authorID string) (articles []models.Article, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "articles", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles a WHERE a.author_id = ? ORDER BY a.created_at DESC`,
		authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list author articles: %w", err)
	}
	defer closeWithLog(rows, "rows")

	articles = []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// ListPublishedArticles returns one page of Published, non-deleted articles
// matching filter, newest first, with the total match count.
func (db *DB) ListPublishedArticles(ctx context.Context, filter models.ArticleFilter) (articles []models.Article, total int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "articles", start, err) }(time.Now())

	wb := query.NewWhereBuilder().
		AddClause("a.status = ?", models.StatusPublished).
		AddIsNull("a.deleted_at").
		AddEquals("a.category", filter.Category).
		AddContainsFold("a.title", filter.Query).
		AddContainsFold("u.name", filter.Author)
	where, args := wb.BuildWithPrefix()

	from := ` FROM articles a LEFT JOIN users u ON u.id = a.author_id `

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	pageArgs := append(append([]interface{}{}, args...), filter.Limit, filter.Offset)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+articleColumns+`, u.name`+from+where+` ORDER BY a.created_at DESC LIMIT ? OFFSET ?`,
		pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	defer closeWithLog(rows, "rows")

	articles = []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, total, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
