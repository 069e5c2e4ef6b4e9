// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the switchAIRouter
// daemon. It handles loading and parsing the YAML configuration file and
// provides structured access to engine settings including the management
// listener, persisted state locations, and dynamic discovery behavior.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/traylinx/switchAIRouter/internal/constant"
	"github.com/traylinx/switchAIRouter/internal/util"
	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the network host/interface on which the management API binds.
	// Default is "127.0.0.1"; the management surface is local-only by default.
	Host string `yaml:"host"`
	// Port is the network port on which the management API listens.
	Port int `yaml:"port"`

	// Debug enables or disables debug-level logging.
	Debug bool `yaml:"debug"`

	// LoggingToFile controls whether logs are written to rotating files or stdout.
	LoggingToFile bool `yaml:"logging-to-file"`

	// StatePath is the location of the persisted provider tree JSON file.
	// When empty, <state-dir>/provider-tree.json is used.
	StatePath string `yaml:"state-path"`

	// HistoryDBPath is the location of the SQLite request-history database.
	// When empty, <state-dir>/history.db is used. Set to "off" to disable
	// request history entirely.
	HistoryDBPath string `yaml:"history-db-path"`

	// Discovery configures the best-effort local model discovery probe.
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// DiscoveryConfig controls the dynamic discovery probe against the local
// companion process.
type DiscoveryConfig struct {
	// Disabled turns dynamic discovery off entirely.
	Disabled bool `yaml:"disabled"`
	// Port is the local port probed for the discovery endpoint.
	Port int `yaml:"port"`
	// TimeoutMs bounds the probe; on expiry the provider is treated as absent.
	TimeoutMs int `yaml:"timeout-ms"`
}

// DefaultConfig returns a Config populated with defaults suitable for a
// local installation.
func DefaultConfig() *Config {
	return &Config{
		Host: "127.0.0.1",
		Port: 8317,
		Discovery: DiscoveryConfig{
			Port:      constant.DefaultDiscoveryPort,
			TimeoutMs: 1500,
		},
	}
}

// LoadConfig reads the configuration from the given path. A missing file is
// not an error; defaults are returned so the daemon can start with zero
// configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8317
	}
	if c.Discovery.Port == 0 {
		c.Discovery.Port = constant.DefaultDiscoveryPort
	}
	if c.Discovery.TimeoutMs <= 0 {
		c.Discovery.TimeoutMs = 1500
	}
}

// ResolvedStatePath returns the effective provider tree state file location.
func (c *Config) ResolvedStatePath() string {
	if c.StatePath != "" {
		if expanded, err := util.ExpandPath(c.StatePath); err == nil {
			return expanded
		}
		return c.StatePath
	}
	return filepath.Join(util.HomeStateDir(), "provider-tree.json")
}

// ResolvedHistoryDBPath returns the effective request-history database
// location, or "" when history is disabled.
func (c *Config) ResolvedHistoryDBPath() string {
	if c.HistoryDBPath == "off" {
		return ""
	}
	if c.HistoryDBPath != "" {
		if expanded, err := util.ExpandPath(c.HistoryDBPath); err == nil {
			return expanded
		}
		return c.HistoryDBPath
	}
	return filepath.Join(util.HomeStateDir(), "history.db")
}
