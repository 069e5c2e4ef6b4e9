// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package util provides utility functions for the switchAIRouter engine.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StateDirName is the directory name used for mutable engine state, both
// project-local and under the user's home directory.
const StateDirName = ".switchairouter"

// StateDirEnv overrides the home state directory location when set.
const StateDirEnv = "SWITCHAI_ROUTER_STATE_DIR"

// ExpandPath expands a leading ~ to the user's home directory and cleans
// the resulting path.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}

// ProjectStateDir returns the project-local state directory relative to the
// current working directory. The directory is not created.
func ProjectStateDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return StateDirName
	}
	return filepath.Join(wd, StateDirName)
}

// HomeStateDir returns the per-user state directory, honoring the
// SWITCHAI_ROUTER_STATE_DIR override. The directory is not created.
func HomeStateDir() string {
	if dir := os.Getenv(StateDirEnv); dir != "" {
		if resolved, err := ExpandPath(dir); err == nil {
			return resolved
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to a relative state directory if home is unavailable.
		return StateDirName
	}
	return filepath.Join(home, StateDirName)
}

// WritablePath returns the base directory for mutable application data
// (logs, persisted tree state). The directory is created on first use.
func WritablePath() string {
	dir := HomeStateDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ""
	}
	return dir
}
