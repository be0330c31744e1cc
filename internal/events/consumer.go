// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/models"
)

// ReadEventWriter persists read events. *database.DB implements it.
type ReadEventWriter interface {
	InsertReadEvent(ctx context.Context, event *models.ReadEvent) error
}

// Consumer writes consumed read events to the store.
type Consumer struct {
	store  ReadEventWriter
	logger zerolog.Logger
}

// NewConsumer creates a Consumer writing to store.
func NewConsumer(store ReadEventWriter) *Consumer {
	return &Consumer{
		store:  store,
		logger: logging.WithComponent("events-consumer"),
	}
}

// Handle is a watermill NoPublishHandlerFunc.
func (c *Consumer) Handle(msg *message.Message) error {
	event, err := UnmarshalReadEvent(msg.Payload)
	if err != nil {
		// Redelivery cannot fix a malformed payload.
		metrics.RecordEventConsumed("parse_failed")
		c.logger.Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Msg("Dropping undecodable read event")
		return nil
	}

	if err := c.store.InsertReadEvent(msg.Context(), event); err != nil {
		metrics.RecordEventConsumed("store_failed")
		return fmt.Errorf("store read event %s: %w", event.ID, err)
	}

	metrics.RecordEventConsumed("processed")
	return nil
}
