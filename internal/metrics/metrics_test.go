// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.CollectAndCount(DBQueryDuration)

	RecordDBQuery("select", "questions", 5*time.Millisecond, nil)

	after := testutil.CollectAndCount(DBQueryDuration)
	if after <= before {
		t.Errorf("histogram series = %d, want more than %d", after, before)
	}
}

func TestRecordDBQuery_Error(t *testing.T) {
	errsBefore := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "votes"))

	RecordDBQuery("insert", "votes", time.Millisecond, errors.New("constraint violation"))

	errsAfter := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "votes"))
	if errsAfter != errsBefore+1 {
		t.Errorf("error count = %v, want %v", errsAfter, errsBefore+1)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/questions", "200"))

	RecordAPIRequest("GET", "/api/questions", "200", 10*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/questions", "200"))
	if after != before+1 {
		t.Errorf("request count = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("active requests = %v, want %v", got, base+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("active requests = %v, want %v", got, base)
	}
}

func TestDomainCounters(t *testing.T) {
	votesBefore := testutil.ToFloat64(VotesCast)
	likesBefore := testutil.ToFloat64(ReactionsRecorded.WithLabelValues("like"))

	VotesCast.Inc()
	ReactionsRecorded.WithLabelValues("like").Inc()

	if got := testutil.ToFloat64(VotesCast); got != votesBefore+1 {
		t.Errorf("votes cast = %v, want %v", got, votesBefore+1)
	}
	if got := testutil.ToFloat64(ReactionsRecorded.WithLabelValues("like")); got != likesBefore+1 {
		t.Errorf("likes recorded = %v, want %v", got, likesBefore+1)
	}
}

func TestMetricGathering(t *testing.T) {
	// All registered metrics must gather without lint problems so the
	// /metrics endpoint stays scrapeable.
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric %s: %s", p.Metric, p.Text)
	}
}
