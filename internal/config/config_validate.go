// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	switch c.Server.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production, or test, got %q", c.Server.Environment)
	}
	return nil
}

// validateDatabase validates DuckDB configuration.
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

// validateSecurity validates auth and rate limit configuration.
// A missing JWT secret is fatal in production; development generates an
// ephemeral one at startup.
func (c *Config) validateSecurity() error {
	if c.IsProduction() {
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when ENVIRONMENT=production")
		}
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
	}

	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 10 and 31, got %d", c.Security.BcryptCost)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}

	for _, origin := range c.Security.CORSOrigins {
		if origin == "" {
			return fmt.Errorf("CORS_ORIGINS must not contain empty entries")
		}
	}
	return nil
}

// validateLogging validates logging configuration.
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
