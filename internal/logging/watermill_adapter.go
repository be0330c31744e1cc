// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillAdapter implements watermill.LoggerAdapter over zerolog.
type WatermillAdapter struct {
	logger zerolog.Logger
}

var _ watermill.LoggerAdapter = (*WatermillAdapter)(nil)

// NewWatermillAdapter returns an adapter tagged with component=events.
func NewWatermillAdapter() *WatermillAdapter {
	return &WatermillAdapter{logger: WithComponent("events")}
}

// NewWatermillAdapterWithLogger wraps a specific zerolog logger.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewWatermillAdapterWithLogger(logger zerolog.Logger) *WatermillAdapter {
	return &WatermillAdapter{logger: logger}
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	withFields(a.logger.Error().Err(err), fields).Msg(msg)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	withFields(a.logger.Info(), fields).Msg(msg)
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	withFields(a.logger.Debug(), fields).Msg(msg)
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	withFields(a.logger.Trace(), fields).Msg(msg)
}

// With returns an adapter with fields attached to every entry.
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := a.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &WatermillAdapter{logger: ctx.Logger()}
}

func withFields(event *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}
