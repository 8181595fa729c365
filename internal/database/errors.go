// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package database

import (
	"errors"
	"io"
	"strings"

	"github.com/pollarium/pollarium/internal/logging"
)

// Sentinel errors returned by the store. Handlers map these to HTTP
// status codes; everything else is a 500.
var (
	// ErrNotFound indicates the requested row does not exist, or a
	// referenced row (question, answer) does not belong where claimed.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyVoted indicates the user already holds a vote on the
	// question. Raised when the ledger insert affects zero rows.
	ErrAlreadyVoted = errors.New("already voted on this question")

	// ErrUsernameTaken indicates a registration conflict on username.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrForbidden indicates the acting user does not own the resource.
	ErrForbidden = errors.New("not authorized to modify this resource")

	// ErrInvalidReaction indicates a reaction value outside like/dislike.
	ErrInvalidReaction = errors.New("reaction must be like or dislike")

	// ErrTooFewAnswers indicates a question with fewer than two answers.
	ErrTooFewAnswers = errors.New("question requires at least two answers")
)

// isUniqueViolation reports whether err is a DuckDB unique constraint
// violation. The driver surfaces these as constraint errors without a
// typed code, so the message is inspected.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint")
}

// closeWithLog closes a resource and logs any error.
// Use this where close errors should be acknowledged but not fail the
// operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
