// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// consumerHandlerName identifies the read-log handler in router logs.
const consumerHandlerName = "read-log-writer"

// RouterConfig holds configuration for the watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// Router delivers read events from the transport to a Consumer.
type Router struct {
	router  *message.Router
	running atomic.Bool
}

// NewRouter creates a router with panic recovery and retry middleware and a
// single consumer handler on topic.
func NewRouter(cfg RouterConfig, t *Transport, topic string, consumer *Consumer, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Outer to inner: recover panics, then retry transient failures.
	wmRouter.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	wmRouter.AddConsumerHandler(consumerHandlerName, topic, t.Subscriber, consumer.Handle)

	return &Router{router: wmRouter}, nil
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel that closes once handlers are subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router, waiting up to CloseTimeout for in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning reports whether Run is active.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}
