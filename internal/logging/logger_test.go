// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf, Timestamp: true})
	defer Init(DefaultConfig())

	Info().Str("component", "store").Msg("ready")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "ready" {
		t.Errorf("message = %v, want ready", entry["message"])
	}
	if entry["component"] != "store" {
		t.Errorf("component = %v, want store", entry["component"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp field")
	}
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("filtered")
	Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "filtered") {
		t.Error("info message leaked through warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn message missing")
	}
}

func TestInitConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("console line")

	out := buf.String()
	if out == "" {
		t.Fatal("expected console output")
	}
	// Console output is human-readable, not JSON.
	if json.Valid(buf.Bytes()) {
		t.Errorf("console output looks like JSON: %q", out)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(original)

	Err(nil).Msg("captured")

	if !strings.Contains(buf.String(), "captured") {
		t.Errorf("replacement logger did not capture output: %q", buf.String())
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	child := With().Str("component", "hub").Logger()
	child.Info().Msg("scoped")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["component"] != "hub" {
		t.Errorf("component = %v, want hub", entry["component"])
	}
}
