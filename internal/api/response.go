// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/goccy/go-json"

	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/models"
	"github.com/tomtom215/quill/internal/validation"
)

const (
	maxBodyBytes = 1 << 20

	msgInternalError    = "Internal Server Error"
	msgValidationFailed = "Validation failed"
)

// APIError is an error with a known HTTP status and envelope content.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func newAPIError(status int, message string, errs ...string) *APIError {
	return &APIError{Status: status, Message: message, Errors: errs}
}

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"Success":false,"Message":"Internal Server Error","Object":null,"Errors":["Internal Server Error"]}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, status int, message string, object interface{}) {
	respondJSON(w, status, models.SuccessResponse(message, object))
}

// respondError maps err to an envelope. Unknown errors are logged with the
// request context and reported as a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	var verr *validation.RequestValidationError

	switch {
	case errors.As(err, &apiErr):
		if apiErr.Status >= http.StatusInternalServerError {
			logging.Ctx(r.Context()).Error().Err(err).Msg("API Error")
		}
		var errs []string
		if len(apiErr.Errors) > 0 {
			errs = apiErr.Errors
		}
		respondJSON(w, apiErr.Status, models.ErrorResponse(apiErr.Message, errs))
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, models.ErrorResponse(msgValidationFailed, verr.Messages()))
	case errors.Is(err, database.ErrEmailTaken):
		respondJSON(w, http.StatusConflict, models.ErrorResponse("Conflict", []string{"Email already in use"}))
	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Unhandled API error")
		respondJSON(w, http.StatusInternalServerError, models.ErrorResponse(msgInternalError, []string{msgInternalError}))
	}
}

// decodeJSON decodes a request body of at most maxBodyBytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return newAPIError(http.StatusRequestEntityTooLarge, "Request body too large")
		}
		return validation.NewFieldError("body", "Invalid JSON body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return validation.NewFieldError("body", "Request body is required")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return validation.NewFieldError("body", "Invalid JSON body")
	}
	return nil
}

// decodeAndValidate decodes the body into v and validates its struct tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := decodeJSON(w, r, v); err != nil {
		return err
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr
	}
	return nil
}

// recoverPanics turns handler panics into a logged 500 envelope.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
				panic(rec)
			}
			logging.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from handler panic")
			respondJSON(w, http.StatusInternalServerError, models.ErrorResponse(msgInternalError, []string{msgInternalError}))
		}()
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, newAPIError(http.StatusNotFound, "Route not found"))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, newAPIError(http.StatusMethodNotAllowed, "Method not allowed"))
}
