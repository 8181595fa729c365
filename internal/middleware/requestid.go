// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

// Package middleware provides HTTP middleware shared by the API router.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey carries the request ID through the request context.
const RequestIDKey contextKey = "request_id"

// RequestID generates a unique ID for each request and adds it to both
// the response header and the request context. IDs supplied by an
// upstream proxy via X-Request-ID are preserved.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		next(w, r.WithContext(ctx))
	}
}

// GetRequestID extracts the request ID from a context. Returns the
// empty string outside a request.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
