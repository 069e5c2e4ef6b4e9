// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/traylinx/switchAIRouter/internal/constant"
	"github.com/traylinx/switchAIRouter/internal/util"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("A missing config file must not be an error: %v", err)
	}
	if cfg.Host != "127.0.0.1" || cfg.Port != 8317 {
		t.Errorf("Unexpected defaults: %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.Discovery.Port != constant.DefaultDiscoveryPort || cfg.Discovery.TimeoutMs != 1500 {
		t.Errorf("Unexpected discovery defaults: %+v", cfg.Discovery)
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
host: "0.0.0.0"
port: 9000
debug: true
logging-to-file: true
history-db-path: "off"
discovery:
  disabled: true
  port: 5000
  timeout-ms: 700
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Host != "0.0.0.0" || cfg.Port != 9000 {
		t.Errorf("Unexpected listener config: %s:%d", cfg.Host, cfg.Port)
	}
	if !cfg.Debug || !cfg.LoggingToFile {
		t.Error("Expected debug and file logging enabled")
	}
	if !cfg.Discovery.Disabled || cfg.Discovery.Port != 5000 || cfg.Discovery.TimeoutMs != 700 {
		t.Errorf("Unexpected discovery config: %+v", cfg.Discovery)
	}
	if got := cfg.ResolvedHistoryDBPath(); got != "" {
		t.Errorf("Expected history disabled, got path %q", got)
	}
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("host: [unclosed"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected malformed YAML to be rejected")
	}
}

func TestResolvedPaths(t *testing.T) {
	stateDir := t.TempDir()
	t.Setenv(util.StateDirEnv, stateDir)

	t.Run("defaults under the state directory", func(t *testing.T) {
		cfg := DefaultConfig()
		if got := cfg.ResolvedStatePath(); got != filepath.Join(stateDir, "provider-tree.json") {
			t.Errorf("Unexpected state path: %q", got)
		}
		if got := cfg.ResolvedHistoryDBPath(); got != filepath.Join(stateDir, "history.db") {
			t.Errorf("Unexpected history path: %q", got)
		}
	})

	t.Run("explicit overrides", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.StatePath = "/tmp/custom-tree.json"
		cfg.HistoryDBPath = "/tmp/custom.db"
		if got := cfg.ResolvedStatePath(); got != "/tmp/custom-tree.json" {
			t.Errorf("Unexpected state path: %q", got)
		}
		if got := cfg.ResolvedHistoryDBPath(); got != "/tmp/custom.db" {
			t.Errorf("Unexpected history path: %q", got)
		}
	})
}
