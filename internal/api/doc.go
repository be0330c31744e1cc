// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package api provides the HTTP surface of Quill.

Routes (chi v5):

	GET    /health                         system health
	GET    /metrics                        Prometheus exposition
	GET    /swagger/*                      Swagger UI
	POST   /api/auth/signup                register (author or reader)
	POST   /api/auth/login                 issue a JWT
	GET    /api/articles                   public, paginated, filterable
	GET    /api/articles/{id}              public detail; records a read
	POST   /api/articles                   author
	GET    /api/articles/author/me         author's own articles
	GET    /api/articles/author/dashboard  per-article total views
	PUT    /api/articles/{id}              author, own articles only
	DELETE /api/articles/{id}              author, soft delete

Response Envelope:

Every response is a models.APIResponse (or models.PaginatedResponse for the
list endpoint) encoded with goccy/go-json:

	{"Success": true, "Message": "Article retrieved", "Object": {...}, "Errors": null}

Error Mapping:

respondError converts errors to envelopes in one place:
  - *APIError: its status, message and errors
  - *validation.RequestValidationError: 400 "Validation failed"
  - database.ErrEmailTaken: 409 "Conflict"
  - anything else: 500 "Internal Server Error", with the cause logged only

Middleware Stack:

RequestID, RealIP, panic recovery, request logging, Prometheus metrics and
CORS apply to every route. /api routes add httprate limits, and the login
route adds a per-IP token bucket (auth.RateLimiter).
*/
package api
