// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/quill/internal/models"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestAuthenticate(t *testing.T) {
	m := newTestManager(t)
	mw := NewMiddleware(m)

	valid, err := m.GenerateToken("user-1", "author")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"no header", "", http.StatusUnauthorized, MsgMissingToken},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, MsgMissingToken},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, MsgMissingToken},
		{"lowercase scheme", "bearer " + valid, http.StatusUnauthorized, MsgMissingToken},
		{"invalid token", "Bearer abc.def.ghi", http.StatusUnauthorized, MsgInvalidToken},
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotClaims *Claims
			handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotClaims, _ = ClaimsFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/articles/author/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if gotClaims == nil || gotClaims.UserID() != "user-1" {
					t.Errorf("claims = %+v, want subject user-1", gotClaims)
				}
				return
			}

			resp := decodeEnvelope(t, rec)
			if resp.Success {
				t.Error("Success = true, want false")
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", resp.Message, tt.wantMsg)
			}
			if resp.Object != nil || resp.Errors != nil {
				t.Errorf("Object/Errors = %v/%v, want null", resp.Object, resp.Errors)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	m := newTestManager(t)
	mw := NewMiddleware(m)

	valid, err := m.GenerateToken("reader-1", "reader")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name      string
		header    string
		wantClaim bool
	}{
		{"anonymous", "", false},
		{"invalid token ignored", "Bearer nope", false},
		{"valid token", "Bearer " + valid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var ok bool
			handler := mw.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				_, ok = ClaimsFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/articles/a1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if !called {
				t.Fatal("next handler was not called")
			}
			if ok != tt.wantClaim {
				t.Errorf("claims present = %v, want %v", ok, tt.wantClaim)
			}
		})
	}
}

func TestClaimsFromContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Error("ClaimsFromContext() ok = true for empty context")
	}
	if _, ok := ClaimsFromContext(ContextWithClaims(context.Background(), nil)); ok {
		t.Error("ClaimsFromContext() ok = true for nil claims")
	}

	ctx := ContextWithClaims(context.Background(), &Claims{Role: "author"})
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.Role != "author" {
		t.Errorf("ClaimsFromContext() = %+v, %v", claims, ok)
	}
}
