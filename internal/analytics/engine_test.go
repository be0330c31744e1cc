// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package analytics

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/models"
)

// testDBSemaphore serializes DuckDB usage across tests in this package.
var testDBSemaphore = make(chan struct{}, 1)

// day1 is the window aggregated by the engine in these tests.
var (
	day1 = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	day2 = day1.AddDate(0, 0, 1)
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

// newTestEngine returns an engine whose clock sits mid-morning on day2, so
// Run aggregates day1.
func newTestEngine(store Store, cfg EngineConfig) *Engine {
	e := NewEngine(store, cfg)
	e.SetClock(func() time.Time { return day2.Add(10 * time.Hour) })
	e.SetLogger(logging.NewTestLogger(io.Discard))
	return e
}

func addRead(t *testing.T, db *database.DB, articleID string, at time.Time) {
	t.Helper()
	if err := db.InsertReadEvent(context.Background(), &models.ReadEvent{ArticleID: articleID, ReadAt: at}); err != nil {
		t.Fatalf("InsertReadEvent(%s) error = %v", articleID, err)
	}
}

func viewCount(t *testing.T, db *database.DB, articleID string, day time.Time) (int64, bool) {
	t.Helper()
	aggs, err := db.GetDailyAggregates(context.Background(), articleID)
	if err != nil {
		t.Fatalf("GetDailyAggregates(%s) error = %v", articleID, err)
	}
	for _, a := range aggs {
		if a.Date.Equal(day) {
			return a.ViewCount, true
		}
	}
	return 0, false
}

func assertViewCount(t *testing.T, db *database.DB, articleID string, day time.Time, want int64) {
	t.Helper()
	got, ok := viewCount(t, db, articleID, day)
	if !ok {
		t.Fatalf("no daily aggregate for %s on %s", articleID, day.Format(time.DateOnly))
	}
	if got != want {
		t.Errorf("ViewCount(%s, %s) = %d, want %d", articleID, day.Format(time.DateOnly), got, want)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"mid-day", day2.Add(13 * time.Hour)},
		{"exactly midnight", day2},
		{"last instant", day2.Add(24*time.Hour - time.Nanosecond)},
		{"non-UTC clock", day2.Add(3 * time.Hour).In(time.FixedZone("UTC-5", -5*60*60))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.now)
			if !start.Equal(day1) || !end.Equal(day2) {
				t.Errorf("Window(%v) = [%v, %v), want [%v, %v)", tt.now, start, end, day1, day2)
			}
			if start.Location() != time.UTC {
				t.Errorf("window start location = %v, want UTC", start.Location())
			}
		})
	}
}

func TestEngine_Run_CountsEventsInWindow(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(db, EngineConfig{Transactional: true})

	for i := 0; i < 3; i++ {
		addRead(t, db, "A", day1.Add(time.Duration(i)*time.Hour))
	}
	addRead(t, db, "A", day2.Add(time.Hour)) // today, not yet aggregated

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ArticlesAggregated != 1 || res.ViewsAggregated != 3 {
		t.Errorf("RunResult = %+v, want 1 article and 3 views", res)
	}
	if !res.WindowStart.Equal(day1) || !res.WindowEnd.Equal(day2) {
		t.Errorf("RunResult window = [%v, %v), want [%v, %v)", res.WindowStart, res.WindowEnd, day1, day2)
	}
	assertViewCount(t, db, "A", day1, 3)

	if _, ok := viewCount(t, db, "A", day2); ok {
		t.Error("today's reads should not be aggregated")
	}
	if e.LastResult() != res {
		t.Error("LastResult() should return the latest run")
	}
}

func TestEngine_Run_SecondRunDoublesCounts(t *testing.T) {
	tests := []struct {
		name          string
		transactional bool
	}{
		{"transactional", true},
		{"per-upsert", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			e := newTestEngine(db, EngineConfig{Transactional: tt.transactional})

			addRead(t, db, "A", day1.Add(time.Hour))
			addRead(t, db, "A", day1.Add(2*time.Hour))

			for i := 0; i < 2; i++ {
				if _, err := e.Run(context.Background()); err != nil {
					t.Fatalf("Run() #%d error = %v", i+1, err)
				}
			}
			assertViewCount(t, db, "A", day1, 4)
		})
	}
}

func TestEngine_Run_WindowBoundaries(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(db, EngineConfig{Transactional: true})

	addRead(t, db, "A", day1)                        // windowStart: included
	addRead(t, db, "A", day2.Add(-time.Microsecond)) // last instant: included
	addRead(t, db, "A", day2)                        // windowEnd: excluded
	addRead(t, db, "A", day1.Add(-time.Microsecond)) // previous day: excluded

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	assertViewCount(t, db, "A", day1, 2)
}

func TestEngine_Run_SparseResults(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	e := newTestEngine(db, EngineConfig{Transactional: true})

	author := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleAuthor}
	if err := db.CreateUser(ctx, author); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	read := &models.Article{Title: "Read", Content: "c", Category: "Tech", Status: models.StatusPublished, AuthorID: author.ID, CreatedAt: day1.Add(-48 * time.Hour)}
	unread := &models.Article{Title: "Unread", Content: "c", Category: "Tech", Status: models.StatusPublished, AuthorID: author.ID, CreatedAt: day1.Add(-24 * time.Hour)}
	for _, a := range []*models.Article{read, unread} {
		if err := db.CreateArticle(ctx, a); err != nil {
			t.Fatalf("CreateArticle(%s) error = %v", a.Title, err)
		}
	}

	addRead(t, db, read.ID, day1.Add(time.Hour))

	if _, err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	aggs, err := db.GetDailyAggregates(ctx, unread.ID)
	if err != nil {
		t.Fatalf("GetDailyAggregates() error = %v", err)
	}
	if len(aggs) != 0 {
		t.Errorf("unread article has %d aggregate rows, want 0", len(aggs))
	}

	entries, err := db.GetDashboardTotals(ctx, author.ID)
	if err != nil {
		t.Fatalf("GetDashboardTotals() error = %v", err)
	}
	totals := make(map[string]int64, len(entries))
	for _, en := range entries {
		totals[en.Title] = en.TotalViews
	}
	if totals["Read"] != 1 || totals["Unread"] != 0 || len(totals) != 2 {
		t.Errorf("dashboard totals = %v, want Read=1 Unread=0", totals)
	}
}

func TestEngine_Run_MultipleArticles(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(db, EngineConfig{Transactional: true})

	addRead(t, db, "A", day1)
	addRead(t, db, "A", day1.Add(time.Hour))
	addRead(t, db, "B", day1.Add(2*time.Hour))

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ArticlesAggregated != 2 || res.ViewsAggregated != 3 {
		t.Errorf("RunResult = %+v, want 2 articles and 3 views", res)
	}
	assertViewCount(t, db, "A", day1, 2)
	assertViewCount(t, db, "B", day1, 1)
}

func TestEngine_Run_IncrementsExistingRow(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(db, EngineConfig{Transactional: true})

	if err := db.UpsertDailyAggregate(context.Background(), "A", day1, 5); err != nil {
		t.Fatalf("UpsertDailyAggregate() error = %v", err)
	}
	addRead(t, db, "A", day1.Add(time.Hour))
	addRead(t, db, "A", day1.Add(2*time.Hour))

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	assertViewCount(t, db, "A", day1, 7)
}

func TestEngine_RunWindow_DashboardSumsDays(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	e := newTestEngine(db, EngineConfig{Transactional: true})

	author := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleAuthor}
	if err := db.CreateUser(ctx, author); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	article := &models.Article{Title: "Two days", Content: "c", Category: "Tech", Status: models.StatusPublished, AuthorID: author.ID}
	if err := db.CreateArticle(ctx, article); err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		addRead(t, db, article.ID, day1.Add(time.Duration(i)*time.Minute))
	}
	for i := 0; i < 4; i++ {
		addRead(t, db, article.ID, day2.Add(time.Duration(i)*time.Minute))
	}

	// A start anywhere inside the day selects that whole UTC day.
	if _, err := e.RunWindow(ctx, day1.Add(17*time.Hour)); err != nil {
		t.Fatalf("RunWindow(day1) error = %v", err)
	}
	if _, err := e.RunWindow(ctx, day2); err != nil {
		t.Fatalf("RunWindow(day2) error = %v", err)
	}

	assertViewCount(t, db, article.ID, day1, 3)
	assertViewCount(t, db, article.ID, day2, 4)

	entries, err := db.GetDashboardTotals(ctx, author.ID)
	if err != nil {
		t.Fatalf("GetDashboardTotals() error = %v", err)
	}
	if len(entries) != 1 || entries[0].TotalViews != 7 {
		t.Errorf("dashboard = %+v, want one entry with TotalViews=7", entries)
	}
}

func TestEngine_Run_WritesWatermark(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(db, EngineConfig{Transactional: true})

	addRead(t, db, "A", day1.Add(time.Hour))
	addRead(t, db, "B", day1.Add(time.Hour))

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	run, err := db.GetLastAggregationRun(context.Background())
	if err != nil {
		t.Fatalf("GetLastAggregationRun() error = %v", err)
	}
	if !run.WindowStart.Equal(day1) || run.ArticlesAggregated != 2 || run.ViewsAggregated != 2 {
		t.Errorf("watermark = %+v, want window %v with 2 articles and 2 views", run, day1)
	}
}

func TestEngine_Run_SkipAggregatedWindows(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(db, EngineConfig{Transactional: true, SkipAggregatedWindows: true})

	addRead(t, db, "A", day1.Add(time.Hour))

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	before := testutil.ToFloat64(metrics.AggregationRuns.WithLabelValues(resultSkipped))
	_, err := e.Run(context.Background())
	if !errors.Is(err, ErrWindowAlreadyAggregated) {
		t.Fatalf("second Run() error = %v, want ErrWindowAlreadyAggregated", err)
	}
	if got := testutil.ToFloat64(metrics.AggregationRuns.WithLabelValues(resultSkipped)); got != before+1 {
		t.Errorf("skipped runs = %v, want %v", got, before+1)
	}
	assertViewCount(t, db, "A", day1, 1)

	// Other windows still run.
	addRead(t, db, "A", day2.Add(time.Hour))
	if _, err := e.RunWindow(context.Background(), day2); err != nil {
		t.Fatalf("RunWindow(day2) error = %v", err)
	}
	assertViewCount(t, db, "A", day2, 1)
}

// poisonedStore reports a negative count for one article so the
// daily_analytics CHECK constraint fails part-way through a run.
type poisonedStore struct {
	*database.DB
}

func (s poisonedStore) CountReadsGroupedByArticle(_ context.Context, _, _ time.Time) ([]models.ArticleReadCount, error) {
	return []models.ArticleReadCount{
		{ArticleID: "A", Count: 2},
		{ArticleID: "B", Count: -10},
	}, nil
}

func TestEngine_Run_TransactionalFailureLeavesNoRows(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(poisonedStore{db}, EngineConfig{Transactional: true})

	before := testutil.ToFloat64(metrics.AggregationRuns.WithLabelValues(resultError))
	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("Run() expected error from failing upsert")
	}
	if got := testutil.ToFloat64(metrics.AggregationRuns.WithLabelValues(resultError)); got != before+1 {
		t.Errorf("error runs = %v, want %v", got, before+1)
	}

	if _, ok := viewCount(t, db, "A", day1); ok {
		t.Error("article A should have no row after a rolled back run")
	}
	if _, err := db.GetLastAggregationRun(context.Background()); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("GetLastAggregationRun() error = %v, want ErrNotFound", err)
	}
	if e.LastResult() != nil {
		t.Error("LastResult() should be nil after a failed run")
	}
}

func TestEngine_Run_NonTransactionalFailureIsPartial(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(poisonedStore{db}, EngineConfig{Transactional: false})

	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("Run() expected error from failing upsert")
	}

	assertViewCount(t, db, "A", day1, 2)
	if _, ok := viewCount(t, db, "B", day1); ok {
		t.Error("article B should have no row")
	}
	if _, err := db.GetLastAggregationRun(context.Background()); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("watermark should not be written for a failed run, got err = %v", err)
	}
}

// mockStore is an in-memory Store.
type mockStore struct {
	mu         sync.Mutex
	counts     []models.ArticleReadCount
	countErr   error
	upserts    map[string]int64
	watermarks []models.AggregationRun
	block      chan struct{}
	entered    chan struct{}
}

func newMockStore(counts ...models.ArticleReadCount) *mockStore {
	return &mockStore{counts: counts, upserts: make(map[string]int64)}
}

func (m *mockStore) CountReadsGroupedByArticle(ctx context.Context, _, _ time.Time) ([]models.ArticleReadCount, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.counts, m.countErr
}

func (m *mockStore) UpsertDailyAggregate(_ context.Context, articleID string, _ time.Time, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts[articleID] += delta
	return nil
}

func (m *mockStore) ApplyDailyAggregates(ctx context.Context, date time.Time, counts []models.ArticleReadCount, watermark *models.AggregationRun) error {
	for _, c := range counts {
		if err := m.UpsertDailyAggregate(ctx, c.ArticleID, date, c.Count); err != nil {
			return err
		}
	}
	return m.RecordAggregationRun(ctx, watermark)
}

func (m *mockStore) RecordAggregationRun(_ context.Context, run *models.AggregationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watermarks = append(m.watermarks, *run)
	return nil
}

func (m *mockStore) HasAggregationRun(_ context.Context, windowStart time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.watermarks {
		if w.WindowStart.Equal(windowStart) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.upserts) + len(m.watermarks)
}

func TestEngine_Run_RejectsOverlap(t *testing.T) {
	store := newMockStore(models.ArticleReadCount{ArticleID: "A", Count: 1})
	store.block = make(chan struct{})
	store.entered = make(chan struct{}, 1)
	e := newTestEngine(store, EngineConfig{Transactional: true})

	errCh := make(chan error, 1)
	go func() {
		_, err := e.Run(context.Background())
		errCh <- err
	}()

	select {
	case <-store.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not start")
	}
	if !e.IsRunning() {
		t.Error("IsRunning() = false during a run")
	}

	before := testutil.ToFloat64(metrics.AggregationRuns.WithLabelValues(resultOverlap))
	if _, err := e.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("overlapping Run() error = %v, want ErrRunInProgress", err)
	}
	if got := testutil.ToFloat64(metrics.AggregationRuns.WithLabelValues(resultOverlap)); got != before+1 {
		t.Errorf("overlap runs = %v, want %v", got, before+1)
	}
	if n := store.writes(); n != 0 {
		t.Errorf("rejected run wrote %d rows, want 0", n)
	}

	close(store.block)
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("first Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not finish")
	}

	if e.IsRunning() {
		t.Error("IsRunning() = true after the run finished")
	}
	if store.upserts["A"] != 1 {
		t.Errorf("A = %d, want 1", store.upserts["A"])
	}
}

func TestEngine_Run_CountError(t *testing.T) {
	store := newMockStore()
	store.countErr = errors.New("connection reset")
	e := newTestEngine(store, EngineConfig{Transactional: true})

	_, err := e.Run(context.Background())
	if err == nil || !errors.Is(err, store.countErr) {
		t.Fatalf("Run() error = %v, want wrapped count error", err)
	}
	if e.IsRunning() {
		t.Error("overlap guard should be released after a failed run")
	}

	// The guard is free for the next trigger.
	store.countErr = nil
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() after failure error = %v", err)
	}
}

func TestEngine_Run_EmptyWindow(t *testing.T) {
	store := newMockStore()
	e := newTestEngine(store, EngineConfig{Transactional: false})

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ArticlesAggregated != 0 || res.ViewsAggregated != 0 {
		t.Errorf("RunResult = %+v, want zero counts", res)
	}
	if len(store.watermarks) != 1 {
		t.Errorf("watermarks = %d, want 1 for an empty window", len(store.watermarks))
	}
	if got := testutil.ToFloat64(metrics.AggregationArticles); got != 0 {
		t.Errorf("quill_aggregation_articles = %v, want 0", got)
	}
}
