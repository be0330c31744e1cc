// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package models defines data structures for the Quill application.

This package holds the database entities, the API response envelope and the
request bodies shared by the HTTP handlers and the store.

Key Components:

  - User: registered account with the "author" or "reader" role
  - Article: authored content, soft-deleted through DeletedAt
  - ReadEvent: one article-detail view, immutable once written
  - DailyAggregate: per-article, per-UTC-day cumulative view counter
  - AggregationRun: watermark row for a successfully aggregated window
  - APIResponse: the {Success, Message, Object, Errors} envelope

Timestamps are always UTC. DailyAggregate.Date and AggregationRun.WindowStart
are UTC midnights stored as DATE.
*/
package models
