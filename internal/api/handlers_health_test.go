// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/quill/internal/models"
)

func TestHealth(t *testing.T) {
	completed := time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC)

	tests := []struct {
		name         string
		pingErr      error
		lastRun      *models.AggregationRun
		wantStatus   string
		wantDatabase string
		wantLastAgg  string
	}{
		{"healthy without runs", nil, nil, "ok", "connected", ""},
		{"healthy with run", nil, &models.AggregationRun{CompletedAt: completed}, "ok", "connected", "2026-03-02T00:00:01Z"},
		{"database down", errStoreDown, &models.AggregationRun{CompletedAt: completed}, "degraded", "disconnected", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.store.pingErr = tt.pingErr
			env.store.lastRun = tt.lastRun

			rec := env.do(t, http.MethodGet, "/health", nil, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 even when degraded", rec.Code)
			}
			resp := decodeEnvelope(t, rec)
			if !resp.Success || resp.Message != "API is running" {
				t.Errorf("envelope = %+v", resp)
			}

			var status models.HealthStatus
			decodeObject(t, resp, &status)
			if status.Status != tt.wantStatus || status.Database != tt.wantDatabase {
				t.Errorf("status/database = %q/%q, want %q/%q",
					status.Status, status.Database, tt.wantStatus, tt.wantDatabase)
			}
			switch {
			case tt.wantLastAgg == "" && status.LastAggregation != nil:
				t.Errorf("last_aggregation = %q, want null", *status.LastAggregation)
			case tt.wantLastAgg != "" && (status.LastAggregation == nil || *status.LastAggregation != tt.wantLastAgg):
				t.Errorf("last_aggregation = %v, want %q", status.LastAggregation, tt.wantLastAgg)
			}
			if status.UptimeSeconds < 0 {
				t.Errorf("uptime = %v", status.UptimeSeconds)
			}
		})
	}
}
