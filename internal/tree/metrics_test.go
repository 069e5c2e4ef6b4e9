// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestMetricsNodeNeutralPrior(t *testing.T) {
	m := NewMetricsNode("m", "m")
	if got := m.BayesianScore(); got != 0.5 {
		t.Errorf("Expected neutral prior 0.5 with no requests, got %v", got)
	}
	if got := m.RankingGrade(); got != "D" {
		t.Errorf("Expected grade D for the neutral prior, got %s", got)
	}
	if got := m.SuccessRate(); got != 0 {
		t.Errorf("Expected 0 success rate with no requests, got %v", got)
	}
	if got := m.AvgLatencyMs(); got != 0 {
		t.Errorf("Expected 0 average latency with no successes, got %v", got)
	}
}

func TestMetricsNodeCounters(t *testing.T) {
	m := NewMetricsNode("m", "m")
	m.RecordSuccess(100)
	m.RecordError("upstream timeout")

	if got := m.TotalRequests(); got != 2 {
		t.Errorf("Expected totalRequests 2, got %d", got)
	}
	if got := m.SuccessRate(); got != 50 {
		t.Errorf("Expected 50%% success rate, got %v", got)
	}
	if got := m.AvgLatencyMs(); got != 100 {
		t.Errorf("Expected average latency 100, got %v", got)
	}
	msg, ts := m.LastError()
	if msg != "upstream timeout" {
		t.Errorf("Expected last error message, got %q", msg)
	}
	if ts == 0 {
		t.Error("Expected a last error timestamp")
	}

	// Score: posterior (1+1)/(2+2)=0.5, latency factor 1-100/5000=0.98.
	want := 0.5 * (0.7 + 0.3*0.98)
	if got := m.BayesianScore(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected score %v, got %v", want, got)
	}
}

func TestMetricsNodeQuotaAdmission(t *testing.T) {
	m := NewMetricsNode("m", "m")
	u := NewUsageNode("u", "u")
	u.SetLimits(100, 0, 0)

	if !m.RecordRequest(u, 100, 50, "") {
		t.Fatal("Expected first request within quota to succeed")
	}
	// Quota is exhausted: a successful upstream outcome must still be
	// recorded as the synthetic quota error.
	if m.RecordRequest(u, 1, 50, "") {
		t.Error("Expected request over quota to be rejected")
	}
	msg, _ := m.LastError()
	if msg != QuotaExceededError {
		t.Errorf("Expected synthetic %s error, got %q", QuotaExceededError, msg)
	}
	if got := m.SuccessCount(); got != 1 {
		t.Errorf("Expected 1 success after quota rejection, got %d", got)
	}
	if got := m.ErrorCount(); got != 1 {
		t.Errorf("Expected 1 error after quota rejection, got %d", got)
	}
	if got := u.DailyTokensUsed(); got != 100 {
		t.Errorf("Quota rejection must not consume tokens: got %d, want 100", got)
	}

	t.Run("explicit error after admission", func(t *testing.T) {
		m := NewMetricsNode("m", "m")
		u := NewUsageNode("u", "u")
		if m.RecordRequest(u, 10, 0, "rate limited") {
			t.Error("Expected errored request to return false")
		}
		// Admission happened before the error, so the tokens are spent.
		if got := u.DailyTokensUsed(); got != 10 {
			t.Errorf("Expected 10 tokens consumed, got %d", got)
		}
	})

	t.Run("nil usage skips admission", func(t *testing.T) {
		m := NewMetricsNode("m", "m")
		if !m.RecordRequest(nil, 10, 20, "") {
			t.Error("Expected request without a usage ledger to succeed")
		}
	})
}

func TestMetricsNodeLatencyPenalty(t *testing.T) {
	t.Run("saturates at five seconds", func(t *testing.T) {
		m := NewMetricsNode("m", "m")
		m.RecordSuccess(9_000)
		// Latency factor floors at 0; only the 0.7 correctness share remains.
		want := (1.0 + 1) / (1.0 + 2) * 0.7
		if got := m.BayesianScore(); math.Abs(got-want) > 1e-9 {
			t.Errorf("Expected saturated score %v, got %v", want, got)
		}
	})

	t.Run("zero latency is no penalty", func(t *testing.T) {
		m := NewMetricsNode("m", "m")
		m.RecordSuccess(0)
		want := (1.0 + 1) / (1.0 + 2)
		if got := m.BayesianScore(); math.Abs(got-want) > 1e-9 {
			t.Errorf("Expected unpenalized score %v, got %v", want, got)
		}
	})
}

func TestRankingGradeThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.97, "A+"},
		{0.95, "A+"},
		{0.94, "A"},
		{0.90, "A"},
		{0.85, "A-"},
		{0.80, "B+"},
		{0.75, "B"},
		{0.70, "B-"},
		{0.65, "C+"},
		{0.60, "C"},
		{0.55, "C-"},
		{0.50, "D"},
		{0.49, "F"},
		{0.0, "F"},
	}
	for _, tc := range cases {
		if got := rankingGrade(tc.score); got != tc.want {
			t.Errorf("rankingGrade(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestMetricsNodeReset(t *testing.T) {
	m := NewMetricsNode("m", "m")
	m.RecordSuccess(120)
	m.RecordError("boom")
	m.Reset()

	if got := m.TotalRequests(); got != 0 {
		t.Errorf("Expected 0 requests after reset, got %d", got)
	}
	if msg, ts := m.LastError(); msg != "" || ts != 0 {
		t.Errorf("Expected cleared last error after reset, got %q at %d", msg, ts)
	}
	if got := m.BayesianScore(); got != 0.5 {
		t.Errorf("Expected neutral prior after reset, got %v", got)
	}
}

func TestMetricsNodeJSONRoundTrip(t *testing.T) {
	m := NewMetricsNode("m", "m")
	m.RecordSuccess(200)
	m.RecordSuccess(400)
	m.RecordError("bad gateway")

	restored := NewMetricsNode("m", "m")
	if err := restored.ApplyJSON(m.ToJSON()); err != nil {
		t.Fatalf("ApplyJSON failed: %v", err)
	}
	if restored.TotalRequests() != 3 || restored.SuccessCount() != 2 {
		t.Errorf("Restored counters wrong: total=%d success=%d", restored.TotalRequests(), restored.SuccessCount())
	}
	if got := restored.AvgLatencyMs(); got != 300 {
		t.Errorf("Expected restored average latency 300, got %v", got)
	}
	if msg, _ := restored.LastError(); msg != "bad gateway" {
		t.Errorf("Expected restored last error, got %q", msg)
	}
	if restored.BayesianScore() != m.BayesianScore() {
		t.Error("Expected identical score after restore")
	}
}

// TestProperty_BayesianScore checks the score stays within bounds and
// rewards additional successes.
func TestProperty_BayesianScore(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("score is always within [0, 1]", prop.ForAll(
		func(successes int64, errors int64, latency int64) bool {
			score := bayesianScore(successes, successes+errors, float64(latency))
			return score >= 0 && score <= 1
		},
		gen.Int64Range(0, 100_000),
		gen.Int64Range(0, 100_000),
		gen.Int64Range(0, 60_000),
	))

	properties.Property("an extra success never lowers the score", prop.ForAll(
		func(successes int64, errors int64) bool {
			before := bayesianScore(successes, successes+errors, 0)
			after := bayesianScore(successes+1, successes+1+errors, 0)
			return after >= before
		},
		gen.Int64Range(0, 10_000),
		gen.Int64Range(0, 10_000),
	))

	properties.Property("an extra error never raises the score", prop.ForAll(
		func(successes int64, errors int64) bool {
			before := bayesianScore(successes, successes+errors, 0)
			after := bayesianScore(successes, successes+errors+1, 0)
			return after <= before
		},
		gen.Int64Range(1, 10_000),
		gen.Int64Range(0, 10_000),
	))

	properties.TestingRun(t)
}
