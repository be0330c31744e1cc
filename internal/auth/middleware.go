// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/models"
)

type contextKey string

// ClaimsContextKey is the request context key holding *Claims.
const ClaimsContextKey contextKey = "claims"

// Authentication failure messages.
const (
	MsgMissingToken = "Unauthorized: Missing or invalid token"
	MsgInvalidToken = "Unauthorized: Token expired or invalid"
)

const bearerPrefix = "Bearer "

// TokenValidator validates bearer tokens. *JWTManager implements it.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Middleware authenticates requests with bearer tokens.
type Middleware struct {
	tokens TokenValidator
}

// NewMiddleware creates authentication middleware backed by tokens.
func NewMiddleware(tokens TokenValidator) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate requires a valid bearer token and stores its claims in the
// request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, MsgMissingToken)
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			writeError(w, http.StatusUnauthorized, MsgInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// OptionalAuth attaches claims when the request carries a valid bearer token.
// Missing or invalid tokens are ignored and the request continues anonymously.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if claims, err := m.tokens.ValidateToken(token); err == nil {
				r = r.WithContext(ContextWithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithClaims returns a copy of ctx carrying claims.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.ErrorResponse(message, nil)); err != nil {
		logging.Error().Err(err).Msg("Failed to encode auth error response")
	}
}
