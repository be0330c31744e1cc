// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package main

import (
	"fmt"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/events"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/readtracker"
)

// EventComponents holds the read-event transport and both of its ends.
type EventComponents struct {
	transport *events.Transport
	publisher *events.Publisher
	router    *events.Router
}

// InitEvents connects the events transport when events.enabled is set.
// It returns nil components when events are disabled.
func InitEvents(cfg *config.Config, db *database.DB) (*EventComponents, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Event transport disabled (EVENTS_ENABLED=false)")
		return nil, nil
	}

	adapter := logging.NewWatermillAdapter()
	transport, err := events.NewTransport(&cfg.Events, adapter)
	if err != nil {
		return nil, fmt.Errorf("create %s transport: %w", cfg.Events.Transport, err)
	}

	breaker := events.NewCircuitBreaker("read-events-publisher", cfg.Events.CircuitBreaker)
	publisher := events.NewPublisher(transport, cfg.Events.Topic, breaker)

	router, err := events.NewRouter(events.DefaultRouterConfig(), transport, cfg.Events.Topic, events.NewConsumer(db), adapter)
	if err != nil {
		if closeErr := transport.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing event transport")
		}
		return nil, fmt.Errorf("create event router: %w", err)
	}

	logging.Info().
		Str("transport", transport.Name).
		Str("topic", cfg.Events.Topic).
		Msg("Event transport initialized")

	return &EventComponents{
		transport: transport,
		publisher: publisher,
		router:    router,
	}, nil
}

// ReadSink picks where the read tracker writes, per read_tracking.sink.
func ReadSink(cfg *config.Config, db *database.DB, components *EventComponents) readtracker.Sink {
	if cfg.ReadTracking.Sink == config.ReadSinkEvents && components != nil {
		logging.Info().Str("topic", cfg.Events.Topic).Msg("Read events published to event transport")
		return readtracker.SinkFunc(components.publisher.PublishRead)
	}
	logging.Info().Msg("Read events written directly to database")
	return readtracker.SinkFunc(db.InsertReadEvent)
}

// Router returns the consumer-side router, or nil.
func (c *EventComponents) Router() *events.Router {
	if c == nil {
		return nil
	}
	return c.router
}

// Close closes the publisher and then the transport.
func (c *EventComponents) Close() {
	if c == nil {
		return
	}
	if err := c.publisher.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event publisher")
	}
	if err := c.transport.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event transport")
	}
}
