// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

//go:build !nats

package events

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/quill/internal/config"
)

// ErrNATSNotAvailable is returned for the nats transport in builds without
// the nats tag.
var ErrNATSNotAvailable = errors.New("NATS transport not available: build with -tags=nats")

func newNATSTransport(_ *config.EventsConfig, _ watermill.LoggerAdapter) (*Transport, error) {
	return nil, ErrNATSNotAvailable
}
