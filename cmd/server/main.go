// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	_ "github.com/tomtom215/quill/docs" // Import generated swagger docs
	"github.com/tomtom215/quill/internal/analytics"
	"github.com/tomtom215/quill/internal/api"
	"github.com/tomtom215/quill/internal/auth"
	"github.com/tomtom215/quill/internal/authz"
	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/events"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/readtracker"
	"github.com/tomtom215/quill/internal/supervisor"
	"github.com/tomtom215/quill/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Quill with supervisor tree")
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("read_sink", cfg.ReadTracking.Sink).
		Bool("events_enabled", cfg.Events.Enabled).
		Bool("analytics_enabled", cfg.Analytics.Enabled).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("path", db.GetDatabasePath()).Msg("Database initialized successfully")

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if slices.Contains(cfg.Security.CORSOrigins, "*") {
		logging.Warn().Msg("CORS is configured with wildcard origin (CORS_ORIGINS=*)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === READ TRACKING ===

	eventComponents, err := InitEvents(cfg, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize events")
	}
	// Runs after the tree has stopped the router and tracker.
	defer eventComponents.Close()

	trackerCfg := readtracker.Config{
		QueueSize:    cfg.ReadTracking.QueueSize,
		WriteTimeout: cfg.ReadTracking.WriteTimeout,
	}
	if cfg.ReadTracking.Sink == config.ReadSinkDatabase {
		trackerCfg.Breaker = events.NewCircuitBreaker("read-sink-database", cfg.Events.CircuitBreaker)
	}
	tracker := readtracker.New(ReadSink(cfg, db, eventComponents), trackerCfg)

	if router := eventComponents.Router(); router != nil {
		tree.AddDataService(services.NewEventRouterService(router))
		logging.Info().Msg("Event router added to supervisor tree")
	}
	tree.AddDataService(services.NewReadTrackerService(tracker))

	// === ANALYTICS ===

	engine := analytics.NewEngine(db, analytics.EngineConfig{
		Transactional:         cfg.Analytics.Transactional,
		SkipAggregatedWindows: cfg.Analytics.SkipAggregatedWindows,
	})
	if cfg.Analytics.Enabled {
		scheduler, err := analytics.NewScheduler(engine, analytics.SchedulerConfig{
			Schedule:   cfg.Analytics.Schedule,
			Timezone:   cfg.Analytics.Timezone,
			RunOnStart: cfg.Analytics.RunOnStart,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create analytics scheduler")
		}
		tree.AddJobService(services.NewSchedulerService(scheduler))
		logging.Info().
			Str("schedule", cfg.Analytics.Schedule).
			Str("timezone", cfg.Analytics.Timezone).
			Msg("Analytics scheduler added to supervisor tree")
	} else {
		logging.Info().Msg("Analytics scheduler disabled (ANALYTICS_ENABLED=false)")
	}

	// === HTTP API ===

	handler := api.NewHandler(api.HandlerDeps{
		Users:    db,
		Articles: db,
		Health:   db,
		Tokens:   jwtManager,
		Reads:    tracker,
		API:      cfg.API,
	})

	loginLimiter := auth.NewRateLimiter(cfg.Security.LoginRateLimit, cfg.Security.LoginBurst, "login")
	defer loginLimiter.Stop()

	router := api.NewRouter(handler, api.RouterConfig{
		Auth:         auth.NewMiddleware(jwtManager),
		Authz:        authz.NewMiddleware(enforcer),
		Chi:          api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
		LoginLimiter: loginLimiter,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// errCh receives exactly one value and is never closed.
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if pending := tracker.Pending(); pending > 0 {
		logging.Warn().Int("pending", pending).Msg("Read events dropped at shutdown")
	}

	logging.Info().Msg("Application stopped gracefully")
}
