// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pollarium/pollarium/internal/metrics"
)

func TestPrometheusMetrics_RecordsStatus(t *testing.T) {
	before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/teapot", "418"))

	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}

	after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/teapot", "418"))
	if after != before+1 {
		t.Errorf("request count = %v, want %v", after, before+1)
	}
}

func TestPrometheusMetrics_DefaultsTo200(t *testing.T) {
	before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/implicit", "200"))

	// Handlers that never call WriteHeader report 200.
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		//nolint:errcheck // test handler
		w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/implicit", nil)
	handler(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/implicit", "200"))
	if after != before+1 {
		t.Errorf("request count = %v, want %v", after, before+1)
	}
}

func TestPrometheusMetrics_ActiveGaugeBalances(t *testing.T) {
	base := testutil.ToFloat64(metrics.APIActiveRequests)

	var during float64
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(metrics.APIActiveRequests)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if during != base+1 {
		t.Errorf("active requests during handling = %v, want %v", during, base+1)
	}
	if got := testutil.ToFloat64(metrics.APIActiveRequests); got != base {
		t.Errorf("active requests after handling = %v, want %v", got, base)
	}
}
