// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

import (
	"sync"
	"time"
)

// perMinuteWindowMs is the sliding window length for the requests-per-minute
// cap. The window starts on the first request after expiry rather than on a
// fixed clock boundary.
const perMinuteWindowMs = 60_000

// UsageNode is the per-provider quota ledger: daily and monthly token caps
// plus an optional rolling requests-per-minute cap. A limit of zero means
// "unlimited" for that dimension.
//
// Used counters are monotonically non-decreasing until an explicit reset.
// CanConsume answers "would this fit" without side effects; TryConsume is the
// mutating admission check, atomic with respect to its own check under the
// node's mutex.
type UsageNode struct {
	id    string
	label string

	mu                sync.Mutex
	dailyTokenLimit   int64
	dailyTokensUsed   int64
	monthlyTokenLimit int64
	monthlyTokensUsed int64
	requestsPerMinute int
	windowStartMs     int64
	countInWindow     int

	now func() time.Time
}

// NewUsageNode creates an empty usage ledger with no limits configured.
func NewUsageNode(id, label string) *UsageNode {
	return &UsageNode{
		id:    id,
		label: label,
		now:   time.Now,
	}
}

func (u *UsageNode) ID() string       { return u.id }
func (u *UsageNode) Label() string    { return u.label }
func (u *UsageNode) Kind() NodeKind   { return KindUsage }
func (u *UsageNode) Children() []Node { return nil }

// SetLimits configures the quota ceilings. Zero disables a dimension.
func (u *UsageNode) SetLimits(dailyTokens, monthlyTokens int64, requestsPerMinute int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.dailyTokenLimit = dailyTokens
	u.monthlyTokenLimit = monthlyTokens
	u.requestsPerMinute = requestsPerMinute
}

// CanConsume reports whether consuming tokens would stay within every
// configured limit. It is a pure predicate and mutates nothing, including
// the per-minute window.
func (u *UsageNode) CanConsume(tokens int64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.canConsumeLocked(tokens)
}

func (u *UsageNode) canConsumeLocked(tokens int64) bool {
	if u.dailyTokenLimit > 0 && u.dailyTokensUsed+tokens > u.dailyTokenLimit {
		return false
	}
	if u.monthlyTokenLimit > 0 && u.monthlyTokensUsed+tokens > u.monthlyTokenLimit {
		return false
	}
	if u.requestsPerMinute > 0 {
		nowMs := u.now().UnixMilli()
		inWindow := u.countInWindow
		if nowMs-u.windowStartMs > perMinuteWindowMs {
			// Previous window expired; the check sees an empty window but
			// must not start a new one.
			inWindow = 0
		}
		if inWindow+1 > u.requestsPerMinute {
			return false
		}
	}
	return true
}

// TryConsume re-checks the limits and, on success, increments the daily and
// monthly counters and the per-minute window (starting a new window when the
// previous one expired). It returns false and mutates nothing when any limit
// would be exceeded. The check and the increment happen under one lock so no
// concurrent consumption can interleave between them.
func (u *UsageNode) TryConsume(tokens int64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.canConsumeLocked(tokens) {
		return false
	}

	u.dailyTokensUsed += tokens
	u.monthlyTokensUsed += tokens

	if u.requestsPerMinute > 0 {
		nowMs := u.now().UnixMilli()
		if nowMs-u.windowStartMs > perMinuteWindowMs {
			u.windowStartMs = nowMs
			u.countInWindow = 0
		}
		u.countInWindow++
	}
	return true
}

// ResetDaily zeroes the daily counter; the limit is untouched.
func (u *UsageNode) ResetDaily() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.dailyTokensUsed = 0
}

// ResetMonthly zeroes the monthly counter; the limit is untouched.
func (u *UsageNode) ResetMonthly() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.monthlyTokensUsed = 0
}

// DailyTokensUsed returns the current daily counter.
func (u *UsageNode) DailyTokensUsed() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.dailyTokensUsed
}

// MonthlyTokensUsed returns the current monthly counter.
func (u *UsageNode) MonthlyTokensUsed() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.monthlyTokensUsed
}

func (u *UsageNode) ToJSON() map[string]any {
	u.mu.Lock()
	defer u.mu.Unlock()
	return map[string]any{
		"id":                u.id,
		"label":             u.label,
		"type":              string(KindUsage),
		"dailyTokenLimit":   u.dailyTokenLimit,
		"dailyTokensUsed":   u.dailyTokensUsed,
		"monthlyTokenLimit": u.monthlyTokenLimit,
		"monthlyTokensUsed": u.monthlyTokensUsed,
		"requestsPerMinute": u.requestsPerMinute,
		"windowStartMs":     u.windowStartMs,
		"countInWindow":     u.countInWindow,
	}
}

func (u *UsageNode) ApplyJSON(raw map[string]any) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if n, ok := jsonInt(raw, "dailyTokenLimit"); ok {
		u.dailyTokenLimit = n
	}
	if n, ok := jsonInt(raw, "dailyTokensUsed"); ok {
		u.dailyTokensUsed = n
	}
	if n, ok := jsonInt(raw, "monthlyTokenLimit"); ok {
		u.monthlyTokenLimit = n
	}
	if n, ok := jsonInt(raw, "monthlyTokensUsed"); ok {
		u.monthlyTokensUsed = n
	}
	if n, ok := jsonInt(raw, "requestsPerMinute"); ok {
		u.requestsPerMinute = int(n)
	}
	if n, ok := jsonInt(raw, "windowStartMs"); ok {
		u.windowStartMs = n
	}
	if n, ok := jsonInt(raw, "countInWindow"); ok {
		u.countInWindow = int(n)
	}
	return nil
}
