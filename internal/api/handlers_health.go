// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/models"
)

const healthCheckTimeout = 2 * time.Second

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns database connectivity, uptime and the completion time of the last daily aggregation
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{Object=models.HealthStatus} "API is running"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := models.HealthStatus{
		Status:        "ok",
		Database:      "connected",
		UptimeSeconds: h.now().Sub(h.startTime).Seconds(),
	}

	if err := h.health.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: database ping failed")
		status.Status = "degraded"
		status.Database = "disconnected"
	} else {
		run, err := h.health.GetLastAggregationRun(ctx)
		switch {
		case err == nil:
			completed := run.CompletedAt.UTC().Format(time.RFC3339)
			status.LastAggregation = &completed
		case !errors.Is(err, database.ErrNotFound):
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: failed to read last aggregation")
		}
	}

	respondSuccess(w, http.StatusOK, "API is running", status)
}
