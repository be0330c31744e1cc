// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/quill/internal/auth"
	"github.com/tomtom215/quill/internal/authz"
	"github.com/tomtom215/quill/internal/middleware"
)

// DefaultSlowRequestThreshold is the duration above which a request is
// logged at Warn.
const DefaultSlowRequestThreshold = time.Second

// RouterConfig holds the middleware the router wires around the handlers.
type RouterConfig struct {
	Auth  *auth.Middleware
	Authz *authz.Middleware
	Chi   *ChiMiddleware

	// LoginLimiter throttles POST /api/auth/login per client IP. Optional.
	LoginLimiter *auth.RateLimiter

	SlowRequestThreshold time.Duration
}

// Router builds the chi route tree.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
	loginLimiter  *auth.RateLimiter
	slowThreshold time.Duration
}

// NewRouter creates a router for handler.
func NewRouter(handler *Handler, cfg RouterConfig) *Router {
	chiMW := cfg.Chi
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	slow := cfg.SlowRequestThreshold
	if slow <= 0 {
		slow = DefaultSlowRequestThreshold
	}

	return &Router{
		handler:       handler,
		auth:          cfg.Auth,
		authz:         cfg.Authz,
		chiMiddleware: chiMW,
		loginLimiter:  cfg.LoginLimiter,
		slowThreshold: slow,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(recoverPanics)
	r.Use(middleware.RequestLogger(router.slowThreshold))
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// ========================
	// Operational Endpoints
	// ========================
	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// ========================
	// Authentication Endpoints
	// ========================
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())

		r.Post("/signup", router.handler.Signup)
		if router.loginLimiter != nil {
			r.With(router.loginLimiter.Middleware).Post("/login", router.handler.Login)
		} else {
			r.Post("/login", router.handler.Login)
		}
	})

	// ========================
	// Article Endpoints
	// ========================
	r.Route("/api/articles", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.With(router.auth.OptionalAuth).Get("/", router.handler.ListArticles)
		r.With(router.auth.OptionalAuth).Get("/{id}", router.handler.GetArticle)

		r.Group(func(r chi.Router) {
			r.Use(router.auth.Authenticate)

			r.With(router.authz.RequirePermission(authz.ObjectArticles, authz.ActionListOwn)).
				Get("/author/me", router.handler.MyArticles)
			r.With(router.authz.RequirePermission(authz.ObjectDashboard, authz.ActionRead)).
				Get("/author/dashboard", router.handler.Dashboard)
			r.With(router.authz.RequirePermission(authz.ObjectArticles, authz.ActionCreate)).
				Post("/", router.handler.CreateArticle)
			r.With(router.authz.RequirePermission(authz.ObjectArticles, authz.ActionUpdate)).
				Put("/{id}", router.handler.UpdateArticle)
			r.With(router.authz.RequirePermission(authz.ObjectArticles, authz.ActionDelete)).
				Delete("/{id}", router.handler.DeleteArticle)
		})
	})

	return r
}
