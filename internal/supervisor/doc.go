// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package supervisor provides process supervision for Quill using suture v4.

The tree owns every long-running component of the server:

	RootSupervisor ("quill")
	├── DataSupervisor ("data-layer")
	│   ├── read-tracker
	│   └── event-router (if events.enabled)
	├── APISupervisor ("api-layer")
	│   └── http-server
	└── JobsSupervisor ("jobs-layer")
	    └── analytics-scheduler (if analytics.enabled)

# Restart Policy

Crashed services are restarted. After FailureThreshold failures (decaying
at FailureDecay per second) a layer waits FailureBackoff before restarting
again. Layers count failures independently.

# Logging

Supervisor events (service panics, terminations, backoff) go through
sutureslog to a log/slog logger. cmd/server passes logging.NewSlogLogger(),
so they end up in the zerolog output with everything else.

# Shutdown

Canceling the context passed to Serve stops every service concurrently,
each within ShutdownTimeout. Services that miss the deadline are
listed by UnstoppedServiceReport:

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	err := tree.Serve(ctx)
	if report, _ := tree.UnstoppedServiceReport(); len(report) > 0 {
	    // log the stragglers
	}

Services live in the services subpackage.
*/
package supervisor
