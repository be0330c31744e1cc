// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package auth provides authentication for the Quill API.

Key Components:

  - JWTManager: HS256 token generation and validation. The subject claim is
    the user ID and the role claim is "author" or "reader".
  - HashPassword / CheckPassword: bcrypt password hashing (cost 10)
  - Middleware: Authenticate (bearer token required) and OptionalAuth
    (claims attached when a valid token is present)
  - RateLimiter: per-IP token bucket for the login route

Usage Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(jwtManager)

	r.With(mw.Authenticate).Get("/api/articles/author/me", h.MyArticles)

	// In a handler:
	claims, ok := auth.ClaimsFromContext(r.Context())

Failure Responses:

Authentication failures are written as the standard JSON envelope:

  - 401 "Unauthorized: Missing or invalid token" when the Authorization
    header is absent or not a Bearer token
  - 401 "Unauthorized: Token expired or invalid" when validation fails

Role checks are performed by package authz.
*/
package auth
