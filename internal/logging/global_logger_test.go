// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func TestLogFormatter(t *testing.T) {
	formatter := &LogFormatter{}
	ts := time.Date(2026, 8, 12, 20, 14, 4, 0, time.Local)

	t.Run("plain entry", func(t *testing.T) {
		entry := &log.Entry{
			Time:    ts,
			Level:   log.InfoLevel,
			Message: "engine started\n",
		}
		out, err := formatter.Format(entry)
		if err != nil {
			t.Fatalf("Format failed: %v", err)
		}
		line := string(out)
		if !strings.HasPrefix(line, "[2026-08-12 20:14:04] [--------] [info ] ") {
			t.Errorf("Unexpected prefix: %q", line)
		}
		if !strings.HasSuffix(line, "engine started\n") {
			t.Errorf("Expected the trimmed message and one trailing newline: %q", line)
		}
	})

	t.Run("request id and fields", func(t *testing.T) {
		entry := &log.Entry{
			Time:    ts,
			Level:   log.WarnLevel,
			Message: "slow provider",
			Data: log.Fields{
				"request_id": "abc12345",
				"latency":    950,
			},
		}
		out, err := formatter.Format(entry)
		if err != nil {
			t.Fatalf("Format failed: %v", err)
		}
		line := string(out)
		if !strings.Contains(line, "[abc12345]") {
			t.Errorf("Expected the request id, got %q", line)
		}
		if !strings.Contains(line, "[warn ]") {
			t.Errorf("Expected the shortened warn level, got %q", line)
		}
		if !strings.Contains(line, "latency=950") {
			t.Errorf("Expected the extra field, got %q", line)
		}
	})
}
