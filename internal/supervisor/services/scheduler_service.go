// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package services

import (
	"context"
	"fmt"
)

// StartStopper is a component with a Start/Stop lifecycle.
// *analytics.Scheduler satisfies it.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop() error
}

// SchedulerService adapts a Start/Stop component to suture's Serve:
//  1. Start(ctx), returning its error so suture can restart with backoff
//  2. wait for cancellation
//  3. Stop(), which for the analytics scheduler waits for an active run
type SchedulerService struct {
	component StartStopper
	name      string
}

// NewSchedulerService wraps the analytics scheduler.
func NewSchedulerService(component StartStopper) *SchedulerService {
	return &SchedulerService{
		component: component,
		name:      "analytics-scheduler",
	}
}

// Serve implements suture.Service.
func (s *SchedulerService) Serve(ctx context.Context) error {
	if err := s.component.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := s.component.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *SchedulerService) String() string {
	return s.name
}
