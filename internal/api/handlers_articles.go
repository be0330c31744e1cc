// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/quill/internal/auth"
	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/models"
	"github.com/tomtom215/quill/internal/validation"
)

const (
	msgArticleNotFound    = "Article not found"
	msgArticleUnavailable = "News article no longer available"

	// maxPage keeps (page-1)*size well inside int64.
	maxPage = 1_000_000
)

// ListArticles returns published articles, newest first.
//
// @Summary List published articles
// @Description Paginated list of published, non-deleted articles with optional filters
// @Tags Articles
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size (default 10)"
// @Param category query string false "Exact category"
// @Param author query string false "Author name contains (case-insensitive)"
// @Param q query string false "Title contains (case-insensitive)"
// @Success 200 {object} models.PaginatedResponse{Object=[]models.Article} "Articles retrieved successfully"
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Router /api/articles [get]
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, size, err := h.parsePagination(q.Get("page"), q.Get("size"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	filter := models.ArticleFilter{
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Query:    q.Get("q"),
		Limit:    size,
		Offset:   (page - 1) * size,
	}

	articles, total, err := h.articles.ListPublishedArticles(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}

	respondJSON(w, http.StatusOK,
		models.NewPaginatedResponse("Articles retrieved successfully", articles, page, size, total))
}

// parsePagination validates and clamps the page and size query values.
func (h *Handler) parsePagination(rawPage, rawSize string) (page, size int, err error) {
	query := models.ArticleListQuery{Page: rawPage, Size: rawSize}
	if verr := validation.ValidateStruct(&query); verr != nil {
		return 0, 0, verr
	}

	page = 1
	if rawPage != "" {
		page, err = strconv.Atoi(rawPage)
		if err != nil {
			page = maxPage
		}
	}
	page = min(max(page, 1), maxPage)

	size = h.pageSize
	if rawSize != "" {
		size, err = strconv.Atoi(rawSize)
		if err != nil {
			size = h.maxPageSize
		}
		if size < 1 {
			size = h.pageSize
		}
	}
	size = min(size, h.maxPageSize)

	return page, size, nil
}

// GetArticle returns one article and records the read.
//
// @Summary Get an article
// @Description Returns an article by ID with its author's name. Each successful call is logged as a read.
// @Tags Articles
// @Produce json
// @Param id path string true "Article ID"
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{Object=models.Article} "Article retrieved"
// @Router /api/articles/{id} [get]
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	article, err := h.articles.GetArticle(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) || (err == nil && article.IsDeleted()) {
		respondJSON(w, http.StatusOK, models.ErrorResponse(msgArticleUnavailable, nil))
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	var readerID *string
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		uid := claims.UserID()
		readerID = &uid
	}
	h.reads.Track(article.ID, readerID)

	respondSuccess(w, http.StatusOK, "Article retrieved", article)
}

// CreateArticle creates an article owned by the caller.
//
// @Summary Create an article
// @Tags Articles
// @Accept json
// @Produce json
// @Param body body models.ArticleRequest true "Article"
// @Security BearerAuth
// @Success 201 {object} models.APIResponse{Object=models.Article} "Article created successfully"
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Failure 403 {object} models.APIResponse "Forbidden"
// @Router /api/articles [post]
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, newAPIError(http.StatusUnauthorized, auth.MsgMissingToken))
		return
	}

	var req models.ArticleRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	article := &models.Article{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Status:   req.Status,
		AuthorID: claims.UserID(),
	}
	if err := h.articles.CreateArticle(r.Context(), article); err != nil {
		respondError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("article_id", article.ID).
		Str("author_id", article.AuthorID).
		Str("status", article.Status).
		Msg("Article created")

	respondSuccess(w, http.StatusCreated, "Article created successfully", article)
}

// MyArticles lists the caller's articles, deleted ones included.
//
// @Summary List own articles
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{Object=[]models.Article} "Your articles retrieved"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Failure 403 {object} models.APIResponse "Forbidden"
// @Router /api/articles/author/me [get]
func (h *Handler) MyArticles(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, newAPIError(http.StatusUnauthorized, auth.MsgMissingToken))
		return
	}

	articles, err := h.articles.ListArticlesByAuthor(r.Context(), claims.UserID())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}

	respondSuccess(w, http.StatusOK, "Your articles retrieved", articles)
}

// Dashboard returns the caller's articles with their total views.
//
// @Summary Author dashboard
// @Description Total views per article, summed from the daily aggregates
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{Object=[]models.DashboardEntry} "Author Dashboard retrieved"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Failure 403 {object} models.APIResponse "Forbidden"
// @Router /api/articles/author/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, newAPIError(http.StatusUnauthorized, auth.MsgMissingToken))
		return
	}

	entries, err := h.articles.GetDashboardTotals(r.Context(), claims.UserID())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.DashboardEntry{}
	}

	respondSuccess(w, http.StatusOK, "Author Dashboard retrieved", entries)
}

// UpdateArticle replaces the caller's article.
//
// @Summary Update an article
// @Description Replaces title, content and category. An omitted status keeps the current one.
// @Tags Articles
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param body body models.ArticleRequest true "Article"
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{Object=models.Article} "Article updated successfully"
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Failure 403 {object} models.APIResponse "Forbidden"
// @Failure 404 {object} models.APIResponse "Article not found"
// @Router /api/articles/{id} [put]
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req models.ArticleRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	article, err := h.ownedArticle(r, chi.URLParam(r, "id"), "modify")
	if err != nil {
		respondError(w, r, err)
		return
	}

	article.Title = req.Title
	article.Content = req.Content
	article.Category = req.Category
	if req.Status != "" {
		article.Status = req.Status
	}

	if err := h.articles.UpdateArticle(r.Context(), article); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			err = newAPIError(http.StatusNotFound, msgArticleNotFound)
		}
		respondError(w, r, err)
		return
	}
	article.Author = nil

	respondSuccess(w, http.StatusOK, "Article updated successfully", article)
}

// DeleteArticle soft-deletes the caller's article.
//
// @Summary Delete an article
// @Description Sets deletedAt. The article disappears from public listings; its aggregates are kept.
// @Tags Articles
// @Produce json
// @Param id path string true "Article ID"
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "Article deleted successfully"
// @Failure 403 {object} models.APIResponse "Forbidden"
// @Failure 404 {object} models.APIResponse "Article not found"
// @Router /api/articles/{id} [delete]
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.ownedArticle(r, chi.URLParam(r, "id"), "delete")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.articles.SoftDeleteArticle(r.Context(), article.ID, h.now().UTC()); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			err = newAPIError(http.StatusNotFound, msgArticleNotFound)
		}
		respondError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("article_id", article.ID).Msg("Article deleted")

	respondSuccess(w, http.StatusOK, "Article deleted successfully", nil)
}

// ownedArticle loads a live article and checks that the caller wrote it.
// verb completes "You cannot ... another author's work".
func (h *Handler) ownedArticle(r *http.Request, id, verb string) (*models.Article, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return nil, newAPIError(http.StatusUnauthorized, auth.MsgMissingToken)
	}

	article, err := h.articles.GetArticle(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) || (err == nil && article.IsDeleted()) {
		return nil, newAPIError(http.StatusNotFound, msgArticleNotFound)
	}
	if err != nil {
		return nil, err
	}

	if article.AuthorID != claims.UserID() {
		return nil, newAPIError(http.StatusForbidden,
			"Forbidden: You cannot "+verb+" another author's work")
	}
	return article, nil
}
