// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/quill/internal/auth"
	"github.com/tomtom215/quill/internal/authz"
	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/models"
)

const testSecret = "test-secret-that-is-at-least-32-characters-long"

var errStoreDown = errors.New("store unavailable")

// mockStore implements UserStore, ArticleStore and HealthChecker in memory.
type mockStore struct {
	mu       sync.Mutex
	users    map[string]*models.User // by ID
	articles map[string]*models.Article
	totals   map[string][]models.DashboardEntry // by author ID
	lastRun  *models.AggregationRun

	pingErr  error
	storeErr error

	lastFilter models.ArticleFilter
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]*models.User),
		articles: make(map[string]*models.Article),
		totals:   make(map[string][]models.DashboardEntry),
	}
}

func (m *mockStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	user.Email = strings.ToLower(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return database.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *mockStore) CreateArticle(_ context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	if article.Status == "" {
		article.Status = models.StatusDraft
	}
	article.CreatedAt = time.Now().UTC()
	article.UpdatedAt = article.CreatedAt
	cp := *article
	m.articles[article.ID] = &cp
	return nil
}

func (m *mockStore) GetArticle(_ context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	a, ok := m.articles[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *a
	if u, ok := m.users[a.AuthorID]; ok {
		cp.Author = &models.ArticleAuthor{Name: u.Name}
	}
	return &cp, nil
}

func (m *mockStore) UpdateArticle(_ context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[article.ID]
	if !ok || a.IsDeleted() {
		return database.ErrNotFound
	}
	article.UpdatedAt = time.Now().UTC()
	cp := *article
	cp.Author = nil
	m.articles[article.ID] = &cp
	return nil
}

func (m *mockStore) SoftDeleteArticle(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok || a.IsDeleted() {
		return database.ErrNotFound
	}
	a.DeletedAt = &at
	return nil
}

func (m *mockStore) ListArticlesByAuthor(_ context.Context, authorID string) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	var out []models.Article
	for _, a := range m.articles {
		if a.AuthorID == authorID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockStore) ListPublishedArticles(_ context.Context, filter models.ArticleFilter) ([]models.Article, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	if m.storeErr != nil {
		return nil, 0, m.storeErr
	}
	var out []models.Article
	for _, a := range m.articles {
		if a.Status != models.StatusPublished || a.IsDeleted() {
			continue
		}
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, *a)
	}
	total := int64(len(out))
	if filter.Offset >= len(out) {
		return nil, total, nil
	}
	end := min(filter.Offset+filter.Limit, len(out))
	return out[filter.Offset:end], total, nil
}

func (m *mockStore) GetDashboardTotals(_ context.Context, authorID string) ([]models.DashboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	return m.totals[authorID], nil
}

func (m *mockStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func (m *mockStore) GetLastAggregationRun(context.Context) (*models.AggregationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastRun == nil {
		return nil, database.ErrNotFound
	}
	cp := *m.lastRun
	return &cp, nil
}

func (m *mockStore) addUser(t *testing.T, name, email, password, role string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	u := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := m.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func (m *mockStore) addArticle(t *testing.T, authorID, title, status string) *models.Article {
	t.Helper()
	a := &models.Article{
		Title:    title,
		Content:  strings.Repeat("content ", 10),
		Category: "tech",
		Status:   status,
		AuthorID: authorID,
	}
	if err := m.CreateArticle(context.Background(), a); err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}
	return a
}

func (m *mockStore) article(id string) *models.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// trackedRead is one call to mockTracker.Track.
type trackedRead struct {
	articleID string
	readerID  *string
}

type mockTracker struct {
	mu    sync.Mutex
	reads []trackedRead
}

func (m *mockTracker) Track(articleID string, readerID *string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, trackedRead{articleID: articleID, readerID: readerID})
	return true
}

func (m *mockTracker) tracked() []trackedRead {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]trackedRead(nil), m.reads...)
}

// testEnv is a fully wired router over in-memory mocks.
type testEnv struct {
	store   *mockStore
	tracker *mockTracker
	tokens  *auth.JWTManager
	handler *Handler
	router  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sec := &config.SecurityConfig{
		JWTSecret:         testSecret,
		TokenTTL:          time.Hour,
		RateLimitDisabled: true,
	}
	tokens, err := auth.NewJWTManager(sec)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	store := newMockStore()
	tracker := &mockTracker{}
	handler := NewHandler(HandlerDeps{
		Users:    store,
		Articles: store,
		Health:   store,
		Tokens:   tokens,
		Reads:    tracker,
		API:      config.APIConfig{DefaultPageSize: 10, MaxPageSize: 100},
	})

	router := NewRouter(handler, RouterConfig{
		Auth:  auth.NewMiddleware(tokens),
		Authz: authz.NewMiddleware(enforcer),
		Chi:   NewChiMiddleware(ChiMiddlewareConfigFromSecurity(sec)),
	})

	return &testEnv{
		store:   store,
		tracker: tracker,
		tokens:  tokens,
		handler: handler,
		router:  router.SetupChi(),
	}
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

// do sends a request through the router. body is JSON-encoded unless it is
// a string.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	switch b := body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded response with Object kept raw.
type envelope struct {
	Success    bool            `json:"Success"`
	Message    string          `json:"Message"`
	Object     json.RawMessage `json:"Object"`
	Errors     []string        `json:"Errors"`
	PageNumber int             `json:"PageNumber"`
	PageSize   int             `json:"PageSize"`
	TotalSize  int64           `json:"TotalSize"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeObject(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Object, v); err != nil {
		t.Fatalf("decode Object %q: %v", string(env.Object), err)
	}
}

func validArticleBody() map[string]string {
	return map[string]string{
		"title":    "Go in production",
		"content":  strings.Repeat("Concurrency is not parallelism. ", 3),
		"category": "tech",
		"status":   models.StatusPublished,
	}
}
