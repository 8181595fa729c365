// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package api

import (
	"net/http"

	"github.com/pollarium/pollarium/internal/logging"
	ws "github.com/pollarium/pollarium/internal/websocket"
)

// WebSocket upgrades the connection and registers the client with the
// hub for live question updates.
//
// Method: GET
// Path: /api/ws
//
// Response:
//   - 101: Upgrade succeeded
//   - 400: Upgrade failed (bad Origin or not a WebSocket request)
//   - 503: Live updates disabled
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, "live updates are disabled", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		logging.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
