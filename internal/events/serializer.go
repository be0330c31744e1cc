// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/quill/internal/models"
)

// ErrInvalidEvent is returned for read events missing required fields.
var ErrInvalidEvent = errors.New("invalid read event")

func validateReadEvent(event *models.ReadEvent) error {
	switch {
	case event == nil:
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	case event.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidEvent)
	case event.ArticleID == "":
		return fmt.Errorf("%w: articleId is required", ErrInvalidEvent)
	case event.ReadAt.IsZero():
		return fmt.Errorf("%w: readAt is required", ErrInvalidEvent)
	}
	return nil
}

// MarshalReadEvent validates and encodes a read event.
func MarshalReadEvent(event *models.ReadEvent) ([]byte, error) {
	if err := validateReadEvent(event); err != nil {
		return nil, err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalReadEvent decodes and validates a read event.
func UnmarshalReadEvent(data []byte) (*models.ReadEvent, error) {
	var event models.ReadEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := validateReadEvent(&event); err != nil {
		return nil, err
	}
	event.ReadAt = event.ReadAt.UTC()
	return &event, nil
}
