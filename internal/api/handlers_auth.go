// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package api

import (
	"net"
	"net/http"

	"github.com/pollarium/pollarium/internal/logging"
	"github.com/pollarium/pollarium/internal/metrics"
	"github.com/pollarium/pollarium/internal/models"
)

// Register creates a new user account and returns a JWT for immediate
// use.
//
// Method: POST
// Path: /api/auth/register
//
// Response:
//   - 200: Account created, token issued
//   - 400: Validation failure or username already taken
//   - 500: Database error
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if msg, ok := decodeAndValidate(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg, nil)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal server error", err)
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, hash)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal server error", err)
		return
	}

	metrics.UsersRegistered.Inc()
	logging.Info().Int64("user_id", user.ID).Str("username", sanitizeLogValue(user.Username)).Msg("User registered")

	respondJSON(w, http.StatusOK, &models.AuthResponse{
		Token: token,
		User:  user.Public(),
	})
}

// Login verifies credentials and issues a JWT.
//
// Method: POST
// Path: /api/auth/login
//
// Response:
//   - 200: Token issued
//   - 400: Malformed request or invalid credentials
//   - 429: Too many attempts from this IP
//
// Unknown username and wrong password return the same message so the
// endpoint cannot be used to enumerate accounts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if h.authMW != nil && !h.authMW.AllowLogin(ip) {
		respondError(w, http.StatusTooManyRequests, "too many login attempts", nil)
		return
	}

	var req models.LoginRequest
	if msg, ok := decodeAndValidate(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg, nil)
		return
	}

	user, err := h.db.UserByUsername(r.Context(), req.Username)
	if err != nil || !h.hasher.Compare(user.PasswordHash, req.Password) {
		metrics.LoginFailures.Inc()
		logging.Warn().Str("username", sanitizeLogValue(req.Username)).Str("ip", ip).Msg("Login failed")
		respondError(w, http.StatusBadRequest, "invalid username or password", nil)
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal server error", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.AuthResponse{
		Token: token,
		User:  user.Public(),
	})
}

// clientIP extracts the remote IP, ignoring the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
