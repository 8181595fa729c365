// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pollarium/pollarium/internal/logging"
)

type contextKey string

// ClaimsContextKey carries the validated *Claims through the request
// context after authentication.
const ClaimsContextKey contextKey = "claims"

// Middleware provides bearer authentication for the API.
type Middleware struct {
	jwtManager   *JWTManager
	loginLimiter *RateLimiter
}

// NewMiddleware creates the authentication middleware. The login limiter
// guards the password check against brute force independently of the
// router-level rate limits.
func NewMiddleware(jwtManager *JWTManager) *Middleware {
	m := &Middleware{
		jwtManager:   jwtManager,
		loginLimiter: NewRateLimiter(5, time.Minute),
	}
	go m.loginLimiter.startCleanup(5 * time.Minute)
	return m
}

// Authenticate enforces a valid bearer token and stores the claims in
// the request context.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok {
			unauthorized(w, "missing or invalid authorization header")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Debug().Err(err).Msg("Token validation failed")
			unauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin enforces authentication plus the admin flag.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || !claims.Admin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			//nolint:errcheck // HTTP response write errors are not recoverable
			w.Write([]byte(`{"error":"admin access required"}`))
			return
		}
		next(w, r)
	})
}

// AllowLogin reports whether a login attempt from the given IP is within
// the brute-force budget.
func (m *Middleware) AllowLogin(ip string) bool {
	return m.loginLimiter.Allow(ip)
}

// ClaimsFromContext extracts the authenticated claims from a request
// context. ok is false on unauthenticated requests.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// RateLimiter implements per-IP rate limiting with automatic cleanup.
type RateLimiter struct {
	limiters  map[string]*rateLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
}

// rateLimiterEntry wraps a rate limiter with last access time.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter creates a limiter allowing reqsPerWindow requests per
// window for each IP.
func NewRateLimiter(reqsPerWindow int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Every(window / time.Duration(reqsPerWindow)),
		burst:     reqsPerWindow,
		stopClean: make(chan struct{}),
	}
}

// Allow checks whether a request from the given IP is allowed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{
			limiter:    rate.NewLimiter(rl.rate, rl.burst),
			lastAccess: time.Now(),
		}
		rl.limiters[ip] = entry
	} else {
		entry.lastAccess = time.Now()
	}
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// startCleanup periodically removes stale rate limiters.
func (rl *RateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopClean:
			return
		}
	}
}

// cleanup removes limiters not accessed within the last hour.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopClean)
}
