// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/quill/internal/logging"
)

// RequestLogger logs one line per request through the request's context
// logger. Requests slower than slowThreshold are logged at Warn; a zero
// threshold disables the slow check.
func RequestLogger(slowThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())

			event := logger.Info()
			switch {
			case rec.statusCode >= http.StatusInternalServerError:
				event = logger.Error()
			case slowThreshold > 0 && duration > slowThreshold:
				event = logger.Warn().Bool("slow", true)
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", rec.statusCode).
				Int("bytes", rec.bytes).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
