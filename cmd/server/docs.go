// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package main provides the Quill HTTP server
//
// @title Quill API
// @version 1.0
// @description Article publishing backend with read tracking and per-author view analytics
// @description
// @description ## Features
// @description
// @description - **Accounts**: signup and login for authors and readers
// @description - **Articles**: authors create, edit and soft-delete their own articles
// @description - **Browse**: paginated public listing with category, author and title filters
// @description - **Analytics**: reads are logged asynchronously and aggregated daily at 00:00 UTC
// @description
// @description ## Authentication
// @description
// @description Protected endpoints require `Authorization: Bearer <token>`.
// @description Use `/api/auth/login` to obtain a token.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description `/api/auth/login` is additionally throttled per IP.
// @description
// @description ## Responses
// @description
// @description Every response uses the same envelope:
// @description ```json
// @description {
// @description   "Success": false,
// @description   "Message": "Validation failed",
// @description   "Object": null,
// @description   "Errors": ["email: Invalid email format"]
// @description }
// @description ```
// @description List endpoints add `PageNumber`, `PageSize` and `TotalSize`.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/quill/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:3000
// @BasePath /
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token from /api/auth/login, sent as "Bearer <token>".
//
// @tag.name Core
// @tag.description Health checks
//
// @tag.name Auth
// @tag.description Signup and login
//
// @tag.name Articles
// @tag.description Public browsing, author article management and the author dashboard
package main
