// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

// Package config provides layered configuration for Pollarium.
//
// Configuration is loaded with Koanf v2 from three layers, in increasing
// precedence: built-in defaults, an optional YAML config file, and
// environment variables.
package config

import "time"

// Config is the root configuration for the Pollarium server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Websocket WebsocketConfig `koanf:"websocket"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 5001)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path, or :memory: for ephemeral
//   - DUCKDB_MAX_MEMORY: Memory limit passed to DuckDB (default: 1GB)
//   - DUCKDB_THREADS: Worker threads, 0 = runtime.NumCPU()
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// SecurityConfig holds authentication and rate limiting settings.
//
// Environment Variables:
//   - JWT_SECRET: HMAC signing secret, required in production
//   - SESSION_TIMEOUT: Token lifetime (default: 24h)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: global per-IP limit
//   - CORS_ORIGINS: comma-separated allowed origins
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// WebsocketConfig holds settings for the live update hub.
type WebsocketConfig struct {
	Enabled         bool          `koanf:"enabled"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	PingInterval    time.Duration `koanf:"ping_interval"`
	MaxMessageBytes int64         `koanf:"max_message_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
