// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

// Package main is the entry point for the Pollarium server.
//
// Pollarium is a self-hosted community polling platform. Users post
// questions with answer options, the community votes and reacts, and a
// ranked top-questions view surfaces what matters most.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, YAML, and env (Koanf v2)
//  2. Database: DuckDB with the questions, answers, votes, and reactions schema
//  3. Authentication: JWT manager and bcrypt password hasher
//  4. WebSocket hub: live question updates to connected clients
//  5. HTTP server: REST API under /api with Swagger docs and Prometheus metrics
//
// Components 4 and 5 run under a suture supervisor tree so a crash in
// one layer restarts only that layer.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// Required in production:
//   - JWT_SECRET: 32+ character secret for token signing
//
// In development a random secret is generated at startup when none is
// configured, so the server comes up with zero setup. Tokens do not
// survive restarts in that mode.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes WebSocket clients and the database connection
//
// # Example Usage
//
// Development:
//
//	ENVIRONMENT=development DUCKDB_PATH=:memory: ./pollarium
//
// Production:
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export DUCKDB_PATH=/data/pollarium.duckdb
//	export CORS_ORIGINS=https://polls.example.com
//	./pollarium
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pollarium/pollarium/internal/api"
	"github.com/pollarium/pollarium/internal/auth"
	"github.com/pollarium/pollarium/internal/config"
	"github.com/pollarium/pollarium/internal/database"
	"github.com/pollarium/pollarium/internal/logging"
	"github.com/pollarium/pollarium/internal/supervisor"
	"github.com/pollarium/pollarium/internal/supervisor/services"
	ws "github.com/pollarium/pollarium/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Pollarium with supervisor tree")
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Bool("websocket", cfg.Websocket.Enabled).
		Msg("Configuration loaded")

	// Development convenience: generate a throwaway JWT secret so the
	// server starts with zero setup. Tokens won't survive restarts.
	if cfg.Security.JWTSecret == "" && !cfg.IsProduction() {
		secret, err := auth.GenerateSecret()
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to generate development JWT secret")
		}
		cfg.Security.JWTSecret = secret
		logging.Warn().Msg("JWT_SECRET not set, generated a random development secret")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	hasher := auth.NewPasswordHasher(cfg.Security.BcryptCost)
	authMW := auth.NewMiddleware(jwtManager)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used in test environments!")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog
	slogLogger := logging.NewSlogLogger()

	tree := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())

	var wsHub *ws.Hub
	if cfg.Websocket.Enabled {
		wsHub = ws.NewHub()
		tree.AddMessagingService(wsHub)
		logging.Info().Msg("WebSocket hub added to supervisor tree")
	} else {
		logging.Info().Msg("WebSocket live updates disabled")
	}

	handler := api.NewHandler(db, cfg, jwtManager, hasher, authMW, wsHub)
	chiMW := api.NewChiMiddlewareFromConfig(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, authMW, chiMW)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Pollarium stopped")
}
