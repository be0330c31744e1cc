// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package middleware provides HTTP middleware for the Quill API.

All middleware uses the chi signature func(http.Handler) http.Handler.

  - RequestID: propagates or generates X-Request-ID and seeds the logging
    context with request and correlation IDs
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labelled by chi route pattern
  - RequestLogger: one zerolog line per request, Warn above the slow threshold and Error for 5xx

Typical order:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(time.Second))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
