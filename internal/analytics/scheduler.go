// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/logging"
)

// ErrSchedulerAlreadyRunning is returned by Start on a running scheduler.
var ErrSchedulerAlreadyRunning = errors.New("scheduler already running")

// Runner is a job triggered by the Scheduler. *Engine implements it.
type Runner interface {
	Run(ctx context.Context) (*RunResult, error)
}

// SchedulerConfig holds scheduler settings.
type SchedulerConfig struct {
	// Schedule is a 5-field cron expression.
	Schedule string

	// Timezone the schedule is evaluated in. Empty means UTC.
	Timezone string

	// RunOnStart triggers one run as soon as the scheduler starts.
	RunOnStart bool
}

// timerFunc starts a timer for d and returns its channel and stop function.
type timerFunc func(d time.Duration) (<-chan time.Time, func() bool)

func realTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Scheduler triggers a Runner on a cron cadence.
//
// Runs are fire-and-forget: the Runner logs its own outcome and neither an
// error nor a panic stops the loop.
type Scheduler struct {
	runner     Runner
	cron       *CronExpression
	loc        *time.Location
	runOnStart bool
	logger     zerolog.Logger

	now      func() time.Time
	newTimer timerFunc

	mu      sync.RWMutex
	running bool
	nextRun time.Time
	cancel  context.CancelFunc
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(runner Runner, cfg SchedulerConfig) (*Scheduler, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}

	cron, err := ParseCron(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}

	return &Scheduler{
		runner:     runner,
		cron:       cron,
		loc:        loc,
		runOnStart: cfg.RunOnStart,
		logger:     logging.WithComponent("analytics-scheduler"),
		now:        time.Now,
		newTimer:   realTimer,
	}, nil
}

// Start starts the scheduler loop. The loop exits when ctx is canceled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(loopCtx, s.stopCh, s.doneCh)

	s.logger.Info().
		Str("schedule", s.cron.String()).
		Str("timezone", s.loc.String()).
		Bool("run_on_start", s.runOnStart).
		Msg("Analytics scheduler started")

	return nil
}

// Stop stops the loop and waits for it to exit, including any active run.
// Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	close(s.stopCh)
	s.cancel()
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh

	s.mu.Lock()
	s.running = false
	s.nextRun = time.Time{}
	s.mu.Unlock()

	s.logger.Info().Msg("Analytics scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRun returns the next scheduled trigger, or the zero time when stopped.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRun
}

func (s *Scheduler) run(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	if s.runOnStart {
		s.trigger(ctx)
	}

	for {
		now := s.now()
		next := s.cron.NextRun(now, s.loc)
		if next.IsZero() {
			s.logger.Error().
				Str("schedule", s.cron.String()).
				Msg("Schedule never matches, scheduler loop exiting")
			return
		}

		s.mu.Lock()
		s.nextRun = next
		s.mu.Unlock()

		s.logger.Debug().Time("next_run", next).Msg("Next analytics run scheduled")

		timerC, stopTimer := s.newTimer(next.Sub(now))
		select {
		case <-stopCh:
			stopTimer()
			return
		case <-ctx.Done():
			stopTimer()
			return
		case <-timerC:
			s.trigger(ctx)
		}
	}
}

// trigger invokes the runner, absorbing errors and panics.
func (s *Scheduler) trigger(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Msg("Analytics Job Error")
		}
	}()

	// The runner logs its own outcome.
	_, _ = s.runner.Run(ctx)
}
