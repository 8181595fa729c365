// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package api

import (
	"context"
	"net/http"
	"time"
)

// healthResponse is the payload for liveness and readiness probes.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Error         string `json:"error,omitempty"`
}

// HealthLive reports process liveness. It never touches the database,
// so a wedged store does not cause restart loops.
//
// Method: GET
// Path: /api/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// HealthReady reports readiness to serve traffic by pinging the
// database with a short timeout.
//
// Method: GET
// Path: /api/health/ready
//
// Response:
//   - 200: Database reachable
//   - 503: Database unavailable
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, &healthResponse{
			Status:        "unavailable",
			UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
			Error:         "database unreachable",
		})
		return
	}

	respondJSON(w, http.StatusOK, &healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}
