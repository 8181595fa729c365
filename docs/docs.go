// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

// Package docs serves the hand-maintained OpenAPI document consumed by
// the Swagger UI at /swagger/.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openAPISpec []byte

// ServeSpec writes the embedded OpenAPI document.
func ServeSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write(openAPISpec)
}
