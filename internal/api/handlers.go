// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

// Package api provides HTTP handlers for the Pollarium application.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pollarium/pollarium/internal/auth"
	"github.com/pollarium/pollarium/internal/config"
	"github.com/pollarium/pollarium/internal/database"
	"github.com/pollarium/pollarium/internal/logging"
	ws "github.com/pollarium/pollarium/internal/websocket"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, WebSocket origin checks
//   - handlers_helpers.go: shared response and parsing helpers
//   - handlers_auth.go: registration and login
//   - handlers_questions.go: question CRUD and ranking
//   - handlers_votes.go: vote casting and reactions
//   - handlers_admin.go: admin user and question management
//   - handlers_health.go: liveness and readiness probes
//   - handlers_websocket.go: live update connections
type Handler struct {
	db         *database.DB
	config     *config.Config
	jwtManager *auth.JWTManager
	hasher     *auth.PasswordHasher
	authMW     *auth.Middleware
	wsHub      *ws.Hub
	startTime  time.Time
}

// NewHandler creates a new API handler with all required dependencies.
//
// The wsHub may be nil when live updates are disabled; broadcast calls
// are skipped in that case. The auth middleware is shared with the
// router so the login handler can consult its brute-force limiter.
func NewHandler(db *database.DB, cfg *config.Config, jwtManager *auth.JWTManager, hasher *auth.PasswordHasher, authMW *auth.Middleware, wsHub *ws.Hub) *Handler {
	return &Handler{
		db:         db,
		config:     cfg,
		jwtManager: jwtManager,
		hasher:     hasher,
		authMW:     authMW,
		wsHub:      wsHub,
		startTime:  time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout to protect against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browser WebSockets always include Origin. Allowing empty Origin
	// would bypass CORS entirely.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// Fail open for tests that build a Handler without config.
	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
