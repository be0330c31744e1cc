// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockService runs until canceled, after failing maxFails times.
type mockService struct {
	name      string
	starts    atomic.Int32
	failCount atomic.Int32

	mu       sync.Mutex
	maxFails int32
	ignore   bool // ignore cancellation to simulate a hung service
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)

	m.mu.Lock()
	maxFails, ignore := m.maxFails, m.ignore
	m.mu.Unlock()

	if maxFails > 0 && m.failCount.Add(1) <= maxFails {
		return errors.New("simulated failure")
	}
	if ignore {
		time.Sleep(time.Second)
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

var _ suture.Service = (*mockService)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}
	if tree.ShutdownTimeout() != 10*time.Second {
		t.Errorf("ShutdownTimeout() = %v", tree.ShutdownTimeout())
	}
}

func TestNewSupervisorTree_NilLogger(t *testing.T) {
	if _, err := NewSupervisorTree(nil, TreeConfig{}); err != nil {
		t.Fatalf("NewSupervisorTree(nil) error = %v", err)
	}
}

func TestSupervisorTree_LayersStart(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := newMockService("read-tracker")
	api := newMockService("http-server")
	jobs := newMockService("analytics-scheduler")
	tree.AddDataService(data)
	tree.AddAPIService(api)
	tree.AddJobService(jobs)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	for _, svc := range []*mockService{data, api, jobs} {
		waitFor(t, func() bool { return svc.starts.Load() >= 1 })
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down")
	}
}

func TestSupervisorTree_FailureIsolation(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := newMockService("analytics-scheduler")
	failing.maxFails = 2
	stable := newMockService("http-server")
	tree.AddJobService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return failing.starts.Load() >= 3 })
	if got := stable.starts.Load(); got != 1 {
		t.Errorf("stable api service starts = %d, want 1", got)
	}

	cancel()
	<-done
}

func TestSupervisorTree_RemoveJobService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	job := newMockService("analytics-scheduler")
	token := tree.AddJobService(job)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return job.starts.Load() >= 1 })
	if err := tree.RemoveJobService(token); err != nil {
		t.Errorf("RemoveJobService() error = %v", err)
	}

	cancel()
	<-done
}

func TestSupervisorTree_UnstoppedServiceReport(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: 50 * time.Millisecond})
	hung := newMockService("hung")
	hung.ignore = true
	tree.AddAPIService(hung)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)
	waitFor(t, func() bool { return hung.starts.Load() >= 1 })
	cancel()
	<-done

	if _, err := tree.UnstoppedServiceReport(); err != nil {
		t.Errorf("UnstoppedServiceReport() error = %v", err)
	}
}
