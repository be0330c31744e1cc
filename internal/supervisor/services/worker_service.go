// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package services

import (
	"context"
)

// ContextRunner is a component whose Run blocks until ctx is canceled.
// *readtracker.Tracker and *events.Router satisfy it.
type ContextRunner interface {
	Run(ctx context.Context) error
}

// WorkerService names a ContextRunner for supervision. Run already follows
// the suture.Service contract, so Serve delegates.
type WorkerService struct {
	runner ContextRunner
	name   string
}

// NewReadTrackerService wraps the read-log queue worker.
func NewReadTrackerService(tracker ContextRunner) *WorkerService {
	return &WorkerService{runner: tracker, name: "read-tracker"}
}

// NewEventRouterService wraps the watermill router that persists read events.
func NewEventRouterService(router ContextRunner) *WorkerService {
	return &WorkerService{runner: router, name: "event-router"}
}

// Serve implements suture.Service.
func (w *WorkerService) Serve(ctx context.Context) error {
	return w.runner.Run(ctx)
}

// String implements fmt.Stringer for suture's logs.
func (w *WorkerService) String() string {
	return w.name
}
