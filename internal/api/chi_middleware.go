// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/models"
)

// ChiMiddlewareConfig holds configuration for Chi middleware factories.
type ChiMiddlewareConfig struct {
	// CORS configuration
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	// Rate limiting configuration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc

	// Auth routes get a tenth of RateLimitRequests, at least 5.
	AuthRateLimitRequests int
}

// DefaultChiMiddlewareConfig returns the default configuration.
// CORS origins default to empty, so cross-origin requests are refused
// until origins are configured.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins:   []string{},
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSExposedHeaders:   []string{"X-Request-ID"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: false,
	}
}

// ChiMiddlewareConfigFromSecurity builds the middleware config from the
// security section.
func ChiMiddlewareConfigFromSecurity(sec *config.SecurityConfig) *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	if sec == nil {
		return cfg
	}
	if len(sec.CORSOrigins) > 0 {
		cfg.CORSAllowedOrigins = sec.CORSOrigins
	}
	if sec.RateLimitReqs > 0 {
		cfg.RateLimitRequests = sec.RateLimitReqs
	}
	if sec.RateLimitWindow > 0 {
		cfg.RateLimitWindow = sec.RateLimitWindow
	}
	cfg.RateLimitDisabled = sec.RateLimitDisabled
	return cfg
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a new Chi middleware factory with the given configuration.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   config.CORSAllowedMethods,
		AllowedHeaders:   config.CORSAllowedHeaders,
		ExposedHeaders:   config.CORSExposedHeaders,
		AllowCredentials: config.CORSAllowCredentials,
		MaxAge:           config.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns the go-chi/cors middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns the general API limiter.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(m.config.RateLimitRequests, "api")
}

// RateLimitAuth returns the stricter limiter for /api/auth.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	requests := m.config.AuthRateLimitRequests
	if requests <= 0 {
		requests = max(m.config.RateLimitRequests/10, 5)
	}
	return m.limit(requests, "auth")
}

func (m *ChiMiddleware) limit(requests int, endpoint string) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	keyFunc := m.config.RateLimitKeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		requests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(rateLimited(endpoint)),
	)
}

// rateLimited writes the 429 envelope. httprate has already set the
// X-RateLimit-* and Retry-After headers.
func rateLimited(endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordRateLimitHit(endpoint)
		respondJSON(w, http.StatusTooManyRequests,
			models.ErrorResponse("Too many requests, please try again later", nil))
	}
}
