// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package models

import "time"

// ReadEvent records one article-detail view. ReaderID is nil for anonymous
// readers. ReadAt is UTC.
type ReadEvent struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"articleId"`
	ReaderID  *string   `json:"readerId"`
	ReadAt    time.Time `json:"readAt"`
}

// DailyAggregate is the cumulative view count of one article on one UTC day.
type DailyAggregate struct {
	ArticleID string    `json:"articleId"`
	Date      time.Time `json:"date"`
	ViewCount int64     `json:"viewCount"`
}

// ArticleReadCount is one row of the grouped read count over a window.
// Articles without reads in the window have no row.
type ArticleReadCount struct {
	ArticleID string
	Count     int64
}

// AggregationRun is the watermark row written when a window is aggregated.
type AggregationRun struct {
	WindowStart        time.Time `json:"windowStart"`
	ArticlesAggregated int       `json:"articlesAggregated"`
	ViewsAggregated    int64     `json:"viewsAggregated"`
	CompletedAt        time.Time `json:"completedAt"`
}

// DashboardEntry is one article on the author dashboard. TotalViews is the
// sum of all DailyAggregate rows of the article, 0 when none exist.
type DashboardEntry struct {
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
	TotalViews int64     `json:"TotalViews"`
}
