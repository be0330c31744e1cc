// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package services provides suture.Service wrappers for Quill components.

Each wrapper translates a component lifecycle into suture's
Serve(ctx context.Context) error and names the service for suture's logs.

# Available Services

HTTP Server (HTTPServerService, "http-server"):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe to Serve
  - Configurable drain timeout (server.shutdown_timeout)

Analytics Scheduler (SchedulerService, "analytics-scheduler"):
  - Wraps analytics.Scheduler Start/Stop
  - Stop waits for an in-progress aggregation run

Read Tracker (WorkerService, "read-tracker"):
  - Wraps readtracker.Tracker.Run
  - Flushes queued read events on shutdown

Event Router (WorkerService, "event-router"):
  - Wraps events.Router.Run (watermill)
  - Only added when events.enabled is set

# Placement

	tree.AddDataService(services.NewReadTrackerService(tracker))
	tree.AddDataService(services.NewEventRouterService(router))
	tree.AddAPIService(services.NewHTTPServerService(server, timeout))
	tree.AddJobService(services.NewSchedulerService(scheduler))
*/
package services
