// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package authz

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/quill/internal/auth"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/models"
)

// MsgForbidden is returned when the caller's role lacks the permission.
const MsgForbidden = "Forbidden: You do not have the required permissions"

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{
		enforcer: enforcer,
	}
}

// RequirePermission allows the request only when the authenticated role may
// perform action on object. It must run after auth.Middleware.Authenticate.
func (m *Middleware) RequirePermission(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				RecordAuthzDecision("", object, action, false, 0)
				writeError(w, http.StatusForbidden, MsgForbidden)
				return
			}

			start := time.Now()
			allowed, err := m.enforcer.Enforce(claims.Role, object, action)
			if err != nil {
				RecordAuthzError("enforce")
				logging.Ctx(r.Context()).Error().Err(err).
					Str("role", claims.Role).
					Str("object", object).
					Str("action", action).
					Msg("Authorization error")
				writeError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			RecordAuthzDecision(claims.Role, object, action, allowed, time.Since(start))

			if !allowed {
				writeError(w, http.StatusForbidden, MsgForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.ErrorResponse(message, nil)); err != nil {
		logging.Error().Err(err).Msg("Failed to encode authz error response")
	}
}
