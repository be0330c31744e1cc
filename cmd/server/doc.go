// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package main is the entry point for the Quill server application.

Quill is an article publishing backend. Authors write and manage articles,
readers browse them, every article view is logged asynchronously, and a
daily job folds the previous UTC day's reads into per-article counters that
back the author dashboard.

# Application Architecture

The server runs its long-lived components under Suture v4 supervision:

	RootSupervisor ("quill")
	├── DataSupervisor ("data-layer")
	│   ├── read-tracker
	│   └── event-router (EVENTS_ENABLED=true)
	├── APISupervisor ("api-layer")
	│   └── http-server
	└── JobsSupervisor ("jobs-layer")
	    └── analytics-scheduler (ANALYTICS_ENABLED=true)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB with versioned migrations
 4. Authentication: JWT (HS256) and Casbin role policy
 5. Events (optional): Watermill over GoChannel or NATS JetStream
 6. Read tracker: bounded queue writing to the database or the event transport
 7. Analytics: aggregation engine and cron scheduler
 8. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
  - Environment variables
  - Config file (config.yaml, or CONFIG_PATH)
  - Built-in defaults

JWT_SECRET is required and must be at least 32 characters.

# Build Tags

	go build ./cmd/server                # GoChannel transport only
	go build -tags nats ./cmd/server     # Enable the NATS JetStream transport

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server (draining in-flight requests within SHUTDOWN_TIMEOUT), the scheduler
and the read tracker, then the event transport and database are closed.

# Example Usage

	export JWT_SECRET=$(openssl rand -base64 32)
	export DUCKDB_PATH=/data/quill.duckdb
	./quill

With NATS JetStream persistence for read events:

	export EVENTS_ENABLED=true
	export EVENTS_TRANSPORT=nats
	export READ_SINK=events
	./quill
*/
package main
