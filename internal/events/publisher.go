// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/models"
)

// msgIDHeader is the JetStream deduplication header (nats.MsgIdHdr).
const msgIDHeader = "Nats-Msg-Id"

// ErrPublisherClosed is returned by PublishRead after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher publishes read events with circuit breaker protection.
type Publisher struct {
	publisher message.Publisher
	topic     string
	transport string
	breaker   *gobreaker.CircuitBreaker[interface{}]

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a Publisher over the transport's publisher.
// breaker may be nil.
func NewPublisher(t *Transport, topic string, breaker *gobreaker.CircuitBreaker[interface{}]) *Publisher {
	return &Publisher{
		publisher: t.Publisher,
		topic:     topic,
		transport: t.Name,
		breaker:   breaker,
	}
}

// PublishRead serializes and publishes one read event. The message UUID is
// the event ID.
func (p *Publisher) PublishRead(ctx context.Context, event *models.ReadEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := MarshalReadEvent(event)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.ID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set(msgIDHeader, event.ID)
	msg.Metadata.Set("article_id", event.ArticleID)

	publish := func() error { return p.publisher.Publish(p.topic, msg) }
	if p.breaker != nil {
		err = Execute(p.breaker, publish)
	} else {
		err = publish()
	}
	if err != nil {
		return fmt.Errorf("publish read event %s: %w", event.ID, err)
	}

	metrics.RecordEventPublished(p.transport)
	return nil
}

// Close marks the publisher closed. The transport owns the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
