// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/quill/internal/config"
)

// Transport is a connected watermill publisher/subscriber pair.
type Transport struct {
	Name       string
	Publisher  message.Publisher
	Subscriber message.Subscriber

	closeOnce sync.Once
	closeErr  error
	closers   []func() error
}

// NewTransport connects the configured events transport.
func NewTransport(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch cfg.Transport {
	case config.TransportGoChannel:
		return newGoChannelTransport(cfg, logger), nil
	case config.TransportNATS:
		return newNATSTransport(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown events transport %q", cfg.Transport)
	}
}

func newGoChannelTransport(cfg *config.EventsConfig, logger watermill.LoggerAdapter) *Transport {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, logger)

	return &Transport{
		Name:       config.TransportGoChannel,
		Publisher:  ch,
		Subscriber: ch,
		closers:    []func() error{ch.Close},
	}
}

// Close releases the transport, in reverse order of acquisition. It is
// safe to call more than once.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		var errs []error
		for i := len(t.closers) - 1; i >= 0; i-- {
			if err := t.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		t.closeErr = errors.Join(errs...)
	})
	return t.closeErr
}
