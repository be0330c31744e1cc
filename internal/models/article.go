// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package models

import "time"

// Article statuses.
const (
	StatusDraft     = "Draft"
	StatusPublished = "Published"
)

// Article is authored content. Deletion sets DeletedAt; rows are never removed.
//
// Author is populated only by queries that join the author's name (public
// list and detail).
type Article struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Category  string         `json:"category"`
	Status    string         `json:"status"`
	AuthorID  string         `json:"authorId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt *time.Time     `json:"deletedAt"`
	Author    *ArticleAuthor `json:"author,omitempty"`
}

// IsDeleted reports whether the article has been soft-deleted.
func (a *Article) IsDeleted() bool {
	return a.DeletedAt != nil
}

// ArticleAuthor is the author summary embedded in public article responses.
type ArticleAuthor struct {
	Name string `json:"name"`
}

// ArticleRequest is the body of POST and PUT /api/articles.
type ArticleRequest struct {
	Title    string `json:"title" validate:"min=1,max=150"`
	Content  string `json:"content" validate:"min=50"`
	Category string `json:"category" validate:"required"`
	Status   string `json:"status" validate:"omitempty,oneof=Draft Published"`
}

// ArticleListQuery holds the raw pagination parameters of GET /api/articles.
type ArticleListQuery struct {
	Page string `json:"page" validate:"omitempty,number"`
	Size string `json:"size" validate:"omitempty,number"`
}

// ArticleFilter holds the public list query.
type ArticleFilter struct {
	Category string
	Author   string // author name contains, case-insensitive
	Query    string // title contains, case-insensitive
	Limit    int
	Offset   int
}
