// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/switchAIRouter/internal/constant"
	"github.com/traylinx/switchAIRouter/internal/util"
)

// SaveToFile serializes the tree to JSON and writes it atomically: the
// payload lands in a sibling temp file which is renamed over the
// destination, so a concurrent reader sees either the old or the new
// complete content. Parent directories are created as needed; a failed save
// leaves no temp file behind and the error is propagated to the caller.
func (t *ProviderTreeRoot) SaveToFile(path string) error {
	payload := map[string]any{
		"version":   constant.TreeStateVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"quotas":    t.ToJSON()["quotas"],
	}
	if err := util.SecureWriteJSON(path, payload, nil); err != nil {
		return fmt.Errorf("failed to save provider tree to %s: %w", path, err)
	}
	log.Debugf("Saved provider tree to %s", path)
	return nil
}

// LoadFromFile merges persisted state into the live tree. A missing file is
// a no-op returning false. Corrupt or unrecognizable JSON is logged and
// treated as "no usable state" rather than an error, so a damaged state
// file can never crash the host process. Both the current versioned shape
// and the legacy flat-providers shape are accepted.
func (t *ProviderTreeRoot) LoadFromFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warnf("Ignoring corrupt state file %s: %v", path, err)
		return false, nil
	}

	version, _ := jsonString(raw, "version")
	switch version {
	case constant.TreeStateVersion:
		if err := t.ApplyJSON(raw); err != nil {
			log.Warnf("Ignoring unusable state file %s: %v", path, err)
			return false, nil
		}
	case constant.LegacyTreeStateVersion, "":
		// Legacy shape: providers at the root, no quota layer. Merge into
		// the default realm.
		providers, ok := jsonMap(raw, "providers")
		if !ok {
			log.Warnf("Ignoring state file %s: unrecognized shape", path)
			return false, nil
		}
		realm := t.EnsureQuota(constant.DefaultQuotaRealm)
		if err := realm.ApplyJSON(map[string]any{"providers": providers}); err != nil {
			log.Warnf("Ignoring unusable legacy state file %s: %v", path, err)
			return false, nil
		}
	default:
		log.Warnf("Ignoring state file %s with unsupported version %q", path, version)
		return false, nil
	}

	log.Debugf("Loaded provider tree state from %s", path)
	return true, nil
}
