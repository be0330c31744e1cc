// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"context"
	"time"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/models"
)

// UserStore persists accounts. *database.DB implements it.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ArticleStore persists articles and serves the dashboard. *database.DB
// implements it.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	UpdateArticle(ctx context.Context, article *models.Article) error
	SoftDeleteArticle(ctx context.Context, id string, at time.Time) error
	ListArticlesByAuthor(ctx context.Context, authorID string) ([]models.Article, error)
	ListPublishedArticles(ctx context.Context, filter models.ArticleFilter) ([]models.Article, int64, error)
	GetDashboardTotals(ctx context.Context, authorID string) ([]models.DashboardEntry, error)
}

// HealthChecker reports database reachability and the last aggregation.
type HealthChecker interface {
	Ping(ctx context.Context) error
	GetLastAggregationRun(ctx context.Context) (*models.AggregationRun, error)
}

// TokenIssuer signs login tokens. *auth.JWTManager implements it.
type TokenIssuer interface {
	GenerateToken(userID, role string) (string, error)
}

// ReadTracker records article reads without blocking the request.
// *readtracker.Tracker implements it.
type ReadTracker interface {
	Track(articleID string, readerID *string) bool
}

// HandlerDeps are the dependencies of Handler.
type HandlerDeps struct {
	Users    UserStore
	Articles ArticleStore
	Health   HealthChecker
	Tokens   TokenIssuer
	Reads    ReadTracker
	API      config.APIConfig
}

// Handler serves the Quill API endpoints.
type Handler struct {
	users       UserStore
	articles    ArticleStore
	health      HealthChecker
	tokens      TokenIssuer
	reads       ReadTracker
	pageSize    int
	maxPageSize int
	startTime   time.Time
	now         func() time.Time
}

// NewHandler creates a new API handler.
//
// Dependencies:
//   - Users, Articles, Health: normally the same *database.DB
//   - Tokens: the JWT manager used at login
//   - Reads: the asynchronous read tracker used by article detail
//   - API: default and maximum page sizes for the list endpoint
func NewHandler(deps HandlerDeps) *Handler {
	pageSize, maxPageSize := deps.API.DefaultPageSize, deps.API.MaxPageSize
	if maxPageSize < 1 {
		maxPageSize = 100
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = min(10, maxPageSize)
	}

	return &Handler{
		users:       deps.Users,
		articles:    deps.Articles,
		health:      deps.Health,
		tokens:      deps.Tokens,
		reads:       deps.Reads,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
		startTime:   time.Now(),
		now:         time.Now,
	}
}
