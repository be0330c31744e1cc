// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package metrics defines the Prometheus metrics exported at /metrics.
//
// Metric families:
//   - duckdb_*: store query latency and errors
//   - api_*: HTTP request counts, latency and in-flight requests
//   - quill_aggregation_*: daily Analytics Engine runs
//   - quill_read_*: asynchronous read tracking queue
//   - circuit_breaker_*: gobreaker state for event publishing and sinks
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Aggregation Metrics
	AggregationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_aggregation_runs_total",
			Help: "Total number of daily aggregation runs by result",
		},
		[]string{"result"}, // "success", "error", "skipped", "overlap"
	)

	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quill_aggregation_duration_seconds",
			Help:    "Duration of daily aggregation runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	AggregationArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quill_aggregation_articles",
			Help: "Number of articles aggregated by the last successful run",
		},
	)

	AggregationLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quill_aggregation_last_success_timestamp_seconds",
			Help: "Unix time of the last successful aggregation run",
		},
	)

	// Read Tracking Metrics
	ReadEventsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_read_events_enqueued_total",
			Help: "Total number of read events accepted by the tracker queue",
		},
	)

	ReadEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_read_events_dropped_total",
			Help: "Total number of read events dropped because the queue was full or closed",
		},
	)

	ReadEventsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_read_events_failed_total",
			Help: "Total number of read events the sink failed to persist",
		},
	)

	ReadQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quill_read_queue_depth",
			Help: "Current number of read events waiting in the tracker queue",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event transport metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_events_published_total",
			Help: "Total number of read events published to the events transport",
		},
		[]string{"transport"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_events_consumed_total",
			Help: "Total number of read events consumed by result",
		},
		[]string{"result"}, // "processed", "parse_failed", "store_failed"
	)

	// Application info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by a rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordAggregationRun records the outcome of one Analytics Engine run.
// articles is only applied to the gauge on success.
func RecordAggregationRun(result string, duration time.Duration, articles int) {
	AggregationRuns.WithLabelValues(result).Inc()
	if result != "success" {
		return
	}
	AggregationDuration.Observe(duration.Seconds())
	AggregationArticles.Set(float64(articles))
	AggregationLastSuccess.SetToCurrentTime()
}

// RecordReadEnqueued records a read event accepted by the tracker.
func RecordReadEnqueued() {
	ReadEventsEnqueued.Inc()
}

// RecordReadDropped records a read event the tracker could not queue.
func RecordReadDropped() {
	ReadEventsDropped.Inc()
}

// RecordReadFailed records a read event the sink failed to persist.
func RecordReadFailed() {
	ReadEventsFailed.Inc()
}

// UpdateReadQueueDepth updates the tracker queue depth gauge.
func UpdateReadQueueDepth(depth int) {
	ReadQueueDepth.Set(float64(depth))
}

// RecordEventPublished records a read event handed to the transport.
func RecordEventPublished(transport string) {
	EventsPublished.WithLabelValues(transport).Inc()
}

// RecordEventConsumed records the outcome of handling one consumed event.
func RecordEventConsumed(result string) {
	EventsConsumed.WithLabelValues(result).Inc()
}
