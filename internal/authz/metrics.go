// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisionsTotal counts authorization decisions by role, object, action, and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"role", "object", "action", "decision"},
	)

	// AuthzDecisionDuration tracks the latency of authorization decisions.
	AuthzDecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authz_decision_duration_seconds",
			Help:    "Duration of authorization decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)

	// AuthzErrorsTotal counts enforcement failures.
	AuthzErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_errors_total",
			Help: "Total number of authorization errors",
		},
		[]string{"error_type"},
	)
)

// RecordAuthzDecision records one authorization decision.
func RecordAuthzDecision(role, object, action string, allowed bool, duration time.Duration) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	if role == "" {
		role = "anonymous"
	}
	AuthzDecisionsTotal.WithLabelValues(role, object, action, decision).Inc()
	AuthzDecisionDuration.Observe(duration.Seconds())
}

// RecordAuthzError records an authorization error by type.
func RecordAuthzError(errorType string) {
	AuthzErrorsTotal.WithLabelValues(errorType).Inc()
}
