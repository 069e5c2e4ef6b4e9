// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package store persists the request-outcome history in a local SQLite
// database. History is best effort: a store failure is logged by the caller
// and never fails the request path.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded request outcome.
type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Tokens    int64     `json:"tokens"`
	LatencyMs int64     `json:"latencyMs"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// ProviderRollup aggregates the history for one provider.
type ProviderRollup struct {
	Provider     string  `json:"provider"`
	Requests     int64   `json:"requests"`
	Successes    int64   `json:"successes"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

const schema = `
CREATE TABLE IF NOT EXISTS request_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	tokens INTEGER NOT NULL DEFAULT 0,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	success INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_request_log_provider ON request_log(provider);
CREATE INDEX IF NOT EXISTS idx_request_log_ts ON request_log(ts);
`

// RequestLog is the SQLite-backed request history.
type RequestLog struct {
	db *sql.DB
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*RequestLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}
	rl := &RequestLog{db: db}
	if err := rl.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return rl, nil
}

// NewWithDB wraps an existing database handle. Used by tests.
func NewWithDB(db *sql.DB) *RequestLog {
	return &RequestLog{db: db}
}

func (r *RequestLog) migrate() error {
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("store: failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *RequestLog) Close() error {
	return r.db.Close()
}

// Append records one request outcome.
func (r *RequestLog) Append(ctx context.Context, e Entry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	success := 0
	if e.Success {
		success = 1
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO request_log (ts, provider, model, tokens, latency_ms, success, error) VALUES (?, ?, ?, ?, ?, ?, ?)",
		ts.UnixMilli(), e.Provider, e.Model, e.Tokens, e.LatencyMs, success, e.Error)
	if err != nil {
		return fmt.Errorf("store: failed to append entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (r *RequestLog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, ts, provider, model, tokens, latency_ms, success, error FROM request_log ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		var success int
		if err := rows.Scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Tokens, &e.LatencyMs, &success, &e.Error); err != nil {
			return nil, fmt.Errorf("store: failed to scan entry: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		e.Success = success == 1
		out = append(out, e)
	}
	return out, rows.Err()
}

// Rollup aggregates the history per provider.
func (r *RequestLog) Rollup(ctx context.Context) ([]ProviderRollup, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT provider, COUNT(*), SUM(success), COALESCE(AVG(CASE WHEN success = 1 THEN latency_ms END), 0) FROM request_log GROUP BY provider ORDER BY provider")
	if err != nil {
		return nil, fmt.Errorf("store: failed to query rollup: %w", err)
	}
	defer rows.Close()

	var out []ProviderRollup
	for rows.Next() {
		var p ProviderRollup
		if err := rows.Scan(&p.Provider, &p.Requests, &p.Successes, &p.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("store: failed to scan rollup: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
