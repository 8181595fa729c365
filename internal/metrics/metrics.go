// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

// Package metrics provides Prometheus instrumentation for Pollarium:
// API endpoint latency and throughput, DuckDB query performance, vote and
// reaction counters, and WebSocket connections.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Domain Metrics
	VotesCast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "votes_cast_total",
			Help: "Total number of votes accepted by the ledger",
		},
	)

	VotesRejectedDuplicate = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "votes_rejected_duplicate_total",
			Help: "Total number of votes rejected because the user already voted",
		},
	)

	ReactionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactions_recorded_total",
			Help: "Total number of reactions recorded (inserts and overwrites)",
		},
		[]string{"reaction"},
	)

	QuestionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "questions_created_total",
			Help: "Total number of questions created",
		},
	)

	QuestionsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "questions_deleted_total",
			Help: "Total number of questions deleted",
		},
	)

	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of user registrations",
		},
	)

	LoginFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "login_failures_total",
			Help: "Total number of failed login attempts",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
