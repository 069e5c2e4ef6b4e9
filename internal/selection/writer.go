// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package selection

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/traylinx/switchAIRouter/internal/util"
)

// WriteSelection persists a selection atomically. It refuses outright to
// persist any payload carrying a non-empty apiKey: secrets live in the
// environment, never in the selection file.
func WriteSelection(path string, sel *Selection) error {
	if sel == nil {
		return fmt.Errorf("selection: nothing to write")
	}
	if sel.Provider == "" || sel.ModelName == "" {
		return fmt.Errorf("selection: provider and modelName are required")
	}

	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("selection: failed to marshal: %w", err)
	}
	return writeSelectionBytes(path, data)
}

// WriteSelectionRaw persists an already-marshaled selection payload after
// enforcing the same credential guard, for callers that carry extra fields.
func WriteSelectionRaw(path string, data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("selection: payload is not valid JSON")
	}
	return writeSelectionBytes(path, data)
}

func writeSelectionBytes(path string, data []byte) error {
	if key := gjson.GetBytes(data, "apiKey"); key.Exists() && key.String() != "" {
		return ErrInlineCredential
	}
	// Deprecated payloads may carry an explicit-null apiKey field; drop it
	// rather than persist the dead key.
	if gjson.GetBytes(data, "apiKey").Exists() {
		stripped, err := sjson.DeleteBytes(data, "apiKey")
		if err == nil {
			data = stripped
		}
	}
	if err := util.SecureWrite(path, data, nil); err != nil {
		return fmt.Errorf("selection: failed to persist %s: %w", path, err)
	}
	return nil
}
