// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/pollarium/pollarium/internal/database"
	"github.com/pollarium/pollarium/internal/logging"
	"github.com/pollarium/pollarium/internal/models"
	"github.com/pollarium/pollarium/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent
// log injection. Newlines, carriage returns, and other control
// characters could otherwise forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends an error response in the {"error": message} shape.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.Error().
			Int("status", status).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.ErrorResponse{Error: message})
}

// respondDatabaseError maps database sentinel errors to HTTP status
// codes. Unrecognized errors become a generic 500 so internal details
// never leak to clients.
func respondDatabaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found", nil)
	case errors.Is(err, database.ErrForbidden):
		respondError(w, http.StatusForbidden, "not authorized to modify this resource", nil)
	case errors.Is(err, database.ErrAlreadyVoted):
		respondError(w, http.StatusBadRequest, "already voted on this question", nil)
	case errors.Is(err, database.ErrUsernameTaken):
		respondError(w, http.StatusBadRequest, "username already exists", nil)
	case errors.Is(err, database.ErrInvalidReaction):
		respondError(w, http.StatusBadRequest, "reaction must be like or dislike", nil)
	case errors.Is(err, database.ErrTooFewAnswers):
		respondError(w, http.StatusBadRequest, "question requires at least two answers", nil)
	default:
		respondError(w, http.StatusInternalServerError, "internal server error", err)
	}
}

// decodeJSON decodes a request body into v. Unknown fields are
// ignored so older clients keep working; field values are checked by
// the validator afterwards.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// decodeAndValidate decodes a request body and runs struct validation.
// On failure the returned message is safe to send to the client.
func decodeAndValidate(r *http.Request, v any) (string, bool) {
	if err := decodeJSON(r, v); err != nil {
		return "invalid request body", false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.Error(), false
	}
	return "", true
}

// pathID extracts a positive int64 URL parameter from the chi route
// context.
func pathID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return id, nil
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}
