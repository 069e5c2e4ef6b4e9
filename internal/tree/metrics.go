// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

import (
	"time"
)

// QuotaExceededError is the synthetic error message recorded when quota
// admission rejects a request.
const QuotaExceededError = "quota_exceeded"

// latencySaturationMs is where the latency penalty in the Bayesian score
// bottoms out.
const latencySaturationMs = 5000

// MetricsNode is the per-provider request outcome ledger. It tracks success
// and error counts, cumulative latency, and the most recent failure, and
// derives the Bayesian routing score from them.
//
// The invariant TotalRequests == successCount + errorCount always holds.
type MetricsNode struct {
	id    string
	label string

	successCount   int64
	errorCount     int64
	totalLatencyMs int64

	lastError          string
	lastErrorTimestamp int64 // unix ms, 0 when no error recorded
}

// NewMetricsNode creates an empty outcome ledger.
func NewMetricsNode(id, label string) *MetricsNode {
	return &MetricsNode{id: id, label: label}
}

func (m *MetricsNode) ID() string       { return m.id }
func (m *MetricsNode) Label() string    { return m.label }
func (m *MetricsNode) Kind() NodeKind   { return KindMetrics }
func (m *MetricsNode) Children() []Node { return nil }

// RecordSuccess appends one successful outcome with its observed latency.
func (m *MetricsNode) RecordSuccess(latencyMs int64) {
	m.successCount++
	if latencyMs > 0 {
		m.totalLatencyMs += latencyMs
	}
}

// RecordError appends one failed outcome and stamps the last-error state.
func (m *MetricsNode) RecordError(message string) {
	m.errorCount++
	m.lastError = message
	m.lastErrorTimestamp = time.Now().UnixMilli()
}

// RecordRequest is the composite entry point used by the request path. It
// first runs quota admission against the sibling usage ledger; when the
// quota is exhausted it records a synthetic "quota_exceeded" error and
// returns false without recording success, even when no explicit error was
// passed. Otherwise the outcome is recorded normally and true is returned
// for a success, false for an error.
func (m *MetricsNode) RecordRequest(usage *UsageNode, tokens, latencyMs int64, errMsg string) bool {
	if usage != nil && !usage.TryConsume(tokens) {
		m.RecordError(QuotaExceededError)
		return false
	}
	if errMsg != "" {
		m.RecordError(errMsg)
		return false
	}
	m.RecordSuccess(latencyMs)
	return true
}

// TotalRequests returns successCount + errorCount.
func (m *MetricsNode) TotalRequests() int64 { return m.successCount + m.errorCount }

// SuccessCount returns the number of successful outcomes.
func (m *MetricsNode) SuccessCount() int64 { return m.successCount }

// ErrorCount returns the number of failed outcomes.
func (m *MetricsNode) ErrorCount() int64 { return m.errorCount }

// AvgLatencyMs returns totalLatencyMs / successCount, or 0 with no successes.
func (m *MetricsNode) AvgLatencyMs() float64 {
	if m.successCount == 0 {
		return 0
	}
	return float64(m.totalLatencyMs) / float64(m.successCount)
}

// SuccessRate returns the success percentage over all requests, 0 when empty.
func (m *MetricsNode) SuccessRate() float64 {
	total := m.TotalRequests()
	if total == 0 {
		return 0
	}
	return float64(m.successCount) / float64(total) * 100
}

// LastError returns the most recent failure message and its unix-ms
// timestamp; both are zero values when no error has been recorded.
func (m *MetricsNode) LastError() (string, int64) {
	return m.lastError, m.lastErrorTimestamp
}

// BayesianScore returns the routing score for this ledger.
func (m *MetricsNode) BayesianScore() float64 {
	return bayesianScore(m.successCount, m.TotalRequests(), m.AvgLatencyMs())
}

// RankingGrade maps the Bayesian score to a letter grade.
func (m *MetricsNode) RankingGrade() string {
	return rankingGrade(m.BayesianScore())
}

// Reset zeroes all counters and clears the last-error state. Used for manual
// operator reset, not automatic recovery.
func (m *MetricsNode) Reset() {
	m.successCount = 0
	m.errorCount = 0
	m.totalLatencyMs = 0
	m.lastError = ""
	m.lastErrorTimestamp = 0
}

func (m *MetricsNode) ToJSON() map[string]any {
	out := map[string]any{
		"id":             m.id,
		"label":          m.label,
		"type":           string(KindMetrics),
		"totalRequests":  m.TotalRequests(),
		"successCount":   m.successCount,
		"errorCount":     m.errorCount,
		"totalLatencyMs": m.totalLatencyMs,
		"avgLatencyMs":   m.AvgLatencyMs(),
		"successRate":    m.SuccessRate(),
		"bayesianScore":  m.BayesianScore(),
		"rankingGrade":   m.RankingGrade(),
	}
	if m.lastError != "" {
		out["lastError"] = m.lastError
		out["lastErrorTimestamp"] = m.lastErrorTimestamp
	}
	return out
}

func (m *MetricsNode) ApplyJSON(raw map[string]any) error {
	if n, ok := jsonInt(raw, "successCount"); ok {
		m.successCount = n
	}
	if n, ok := jsonInt(raw, "errorCount"); ok {
		m.errorCount = n
	}
	if n, ok := jsonInt(raw, "totalLatencyMs"); ok {
		m.totalLatencyMs = n
	}
	if s, ok := jsonString(raw, "lastError"); ok {
		m.lastError = s
	}
	if n, ok := jsonInt(raw, "lastErrorTimestamp"); ok {
		m.lastErrorTimestamp = n
	}
	return nil
}

// bayesianScore combines a Laplace-smoothed success posterior with a latency
// penalty: correctness weighs 70%, responsiveness up to 30%, with the
// latency penalty saturating at five seconds. With no requests the score is
// the neutral prior 0.5.
func bayesianScore(successCount, totalRequests int64, avgLatencyMs float64) float64 {
	if totalRequests == 0 {
		return 0.5
	}
	posterior := float64(successCount+1) / float64(totalRequests+2)
	latencyFactor := 1.0
	if avgLatencyMs > 0 {
		latencyFactor = 1 - avgLatencyMs/latencySaturationMs
		if latencyFactor < 0 {
			latencyFactor = 0
		}
	}
	return posterior * (0.7 + 0.3*latencyFactor)
}

// rankingGrade maps a Bayesian score to its letter grade bucket.
func rankingGrade(score float64) string {
	switch {
	case score >= 0.95:
		return "A+"
	case score >= 0.90:
		return "A"
	case score >= 0.85:
		return "A-"
	case score >= 0.80:
		return "B+"
	case score >= 0.75:
		return "B"
	case score >= 0.70:
		return "B-"
	case score >= 0.65:
		return "C+"
	case score >= 0.60:
		return "C"
	case score >= 0.55:
		return "C-"
	case score >= 0.50:
		return "D"
	default:
		return "F"
	}
}
