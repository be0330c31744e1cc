// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/metrics"
)

// NewCircuitBreaker creates a circuit breaker that opens after
// cfg.FailureThreshold consecutive failures. State changes are logged and
// exported as metrics under name.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[interface{}] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	}

	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

// Execute runs fn through cb and records the outcome.
func Execute(cb *gobreaker.CircuitBreaker[interface{}], fn func() error) error {
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "success").Inc()
	case IsBreakerRejection(err):
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "failure").Inc()
	}
	return err
}

// IsBreakerRejection reports whether err came from an open or saturated
// breaker rather than the protected call.
func IsBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
