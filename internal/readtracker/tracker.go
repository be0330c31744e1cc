// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package readtracker records article reads off the request path.
//
// Track never blocks: events go into a bounded queue and a single worker
// drains them into a Sink. When the queue is full the new event is dropped
// and counted. Sink failures are logged and counted, never returned to the
// caller.
package readtracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/quill/internal/events"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/models"
)

// Sink persists read events.
type Sink interface {
	Record(ctx context.Context, event *models.ReadEvent) error
}

// SinkFunc adapts a function to a Sink, e.g. SinkFunc(db.InsertReadEvent)
// or SinkFunc(publisher.PublishRead).
type SinkFunc func(ctx context.Context, event *models.ReadEvent) error

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, event *models.ReadEvent) error {
	return f(ctx, event)
}

// Config holds tracker settings.
type Config struct {
	// QueueSize bounds the number of pending events.
	QueueSize int

	// WriteTimeout bounds each sink write.
	WriteTimeout time.Duration

	// Breaker protects the sink. Optional.
	Breaker *gobreaker.CircuitBreaker[interface{}]
}

// DefaultConfig returns the default queue settings.
func DefaultConfig() Config {
	return Config{
		QueueSize:    1024,
		WriteTimeout: 5 * time.Second,
	}
}

// Tracker queues read events for asynchronous persistence.
type Tracker struct {
	sink    Sink
	cfg     Config
	queue   chan *models.ReadEvent
	now     func() time.Time
	logger  zerolog.Logger
	running chan struct{}
}

// New creates a Tracker writing to sink. Call Run to start the worker.
func New(sink Sink, cfg Config) *Tracker {
	def := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	return &Tracker{
		sink:    sink,
		cfg:     cfg,
		queue:   make(chan *models.ReadEvent, cfg.QueueSize),
		now:     time.Now,
		logger:  logging.WithComponent("read-tracker"),
		running: make(chan struct{}, 1),
	}
}

// Track queues a read of articleID by readerID (nil for anonymous). It
// returns false when the queue is full and the event was dropped.
func (t *Tracker) Track(articleID string, readerID *string) bool {
	event := &models.ReadEvent{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		ReadAt:    t.now().UTC(),
	}
	if readerID != nil {
		id := *readerID
		event.ReaderID = &id
	}

	select {
	case t.queue <- event:
		metrics.RecordReadEnqueued()
		metrics.UpdateReadQueueDepth(len(t.queue))
		return true
	default:
		metrics.RecordReadDropped()
		t.logger.Warn().
			Str("article_id", articleID).
			Int("queue_size", t.cfg.QueueSize).
			Msg("Read event queue full, dropping event")
		return false
	}
}

// Pending returns the number of queued events.
func (t *Tracker) Pending() int {
	return len(t.queue)
}

// ErrAlreadyRunning is returned by Run when a worker is already active.
var ErrAlreadyRunning = errors.New("read tracker already running")

// Run drains the queue into the sink until ctx is canceled, then flushes
// whatever is still queued.
func (t *Tracker) Run(ctx context.Context) error {
	select {
	case t.running <- struct{}{}:
	default:
		return ErrAlreadyRunning
	}
	defer func() { <-t.running }()

	for {
		select {
		case <-ctx.Done():
			t.flush()
			return ctx.Err()
		case event := <-t.queue:
			t.write(event)
		}
	}
}

// flush writes the events queued at shutdown.
func (t *Tracker) flush() {
	n := 0
	for {
		select {
		case event := <-t.queue:
			t.write(event)
			n++
		default:
			if n > 0 {
				t.logger.Info().Int("events", n).Msg("Flushed queued read events")
			}
			return
		}
	}
}

func (t *Tracker) write(event *models.ReadEvent) {
	defer metrics.UpdateReadQueueDepth(len(t.queue))

	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.WriteTimeout)
	defer cancel()

	record := func() error { return t.sink.Record(ctx, event) }

	var err error
	if t.cfg.Breaker != nil {
		err = events.Execute(t.cfg.Breaker, record)
	} else {
		err = record()
	}
	if err != nil {
		metrics.RecordReadFailed()
		t.logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("article_id", event.ArticleID).
			Msg("Failed to record read event")
	}
}
