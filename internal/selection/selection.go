// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package selection resolves "which provider, model, and credentials should
// serve the next request" from a small persisted selection file. The file is
// a pointer, not a vault: persisted selections never carry a usable secret,
// and credential resolution at use-time always goes through the live
// environment.
package selection

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/traylinx/switchAIRouter/internal/secret"
	"github.com/traylinx/switchAIRouter/internal/tree"
	"github.com/traylinx/switchAIRouter/internal/util"
)

// ErrInlineCredential is returned when a caller attempts to persist a
// selection carrying a non-empty inline API key. This is a security
// invariant enforced at the write boundary, not a convention.
var ErrInlineCredential = errors.New("selection: refusing to persist an inline api key")

// CandidateFilenames are the selection file names recognized by the
// resolver, in precedence order.
var CandidateFilenames = []string{
	"current-model.json",
	"current_model.json",
	"selected-model.json",
}

// Selection is the minimal persisted selection shape.
type Selection struct {
	Provider    string          `json:"provider"`
	ModelName   string          `json:"modelName"`
	BaseURL     string          `json:"baseURL,omitempty"`
	AuthType    string          `json:"authType,omitempty"`
	ModelParams tree.Parameters `json:"modelParams,omitempty"`
}

// Equal reports deep equality of two selections.
func (s *Selection) Equal(other *Selection) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Provider != other.Provider || s.ModelName != other.ModelName ||
		s.BaseURL != other.BaseURL || s.AuthType != other.AuthType {
		return false
	}
	return paramsEqual(s.ModelParams, other.ModelParams)
}

func paramsEqual(a, b tree.Parameters) bool {
	eqStr := func(x, y *string) bool {
		if x == nil || y == nil {
			return x == y
		}
		return *x == *y
	}
	eqBool := func(x, y *bool) bool {
		if x == nil || y == nil {
			return x == y
		}
		return *x == *y
	}
	eqFloat := func(x, y *float64) bool {
		if x == nil || y == nil {
			return x == y
		}
		return *x == *y
	}
	eqInt := func(x, y *int) bool {
		if x == nil || y == nil {
			return x == y
		}
		return *x == *y
	}
	return eqStr(a.ReasoningEffort, b.ReasoningEffort) &&
		eqStr(a.Verbosity, b.Verbosity) &&
		eqBool(a.IncludeReasoning, b.IncludeReasoning) &&
		eqFloat(a.Temperature, b.Temperature) &&
		eqFloat(a.TopP, b.TopP) &&
		eqInt(a.MaxTokens, b.MaxTokens)
}

// Credentials resolves the selection's credential from the live environment.
// The environment variable matching the persisted provider is consulted
// (with its documented aliases); anything recorded inline in a selection
// file is never used.
func (s *Selection) Credentials() (string, bool) {
	if s == nil || s.Provider == "" {
		return "", false
	}
	return secret.Resolve(secret.CanonicalEnvVar(s.Provider))
}

// NormalizeLoadedSelection accepts either the minimal selection shape or a
// full exported tree and synthesizes the minimal shape from it. It returns
// nil, not an error, when neither shape matches: callers must treat nil as
// "fall through to environment-variable defaults", never as fatal.
func NormalizeLoadedSelection(raw []byte) *Selection {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	doc := gjson.ParseBytes(raw)

	// Minimal shape: provider + modelName at the top level.
	if doc.Get("provider").Exists() && doc.Get("modelName").Exists() {
		sel := &Selection{
			Provider:  doc.Get("provider").String(),
			ModelName: doc.Get("modelName").String(),
			BaseURL:   doc.Get("baseURL").String(),
			AuthType:  doc.Get("authType").String(),
		}
		if sel.Provider == "" || sel.ModelName == "" {
			return nil
		}
		if params := doc.Get("modelParams"); params.IsObject() {
			sel.ModelParams = paramsFromResult(params)
		}
		return sel
	}

	// Full tree export: walk quotas -> providers -> models for a model
	// flagged selected or matching the provider's selectedModel.
	quotas := doc.Get("quotas")
	if !quotas.Exists() {
		// Legacy export without the quota layer.
		quotas = gjson.Parse(`{"legacy":` + doc.Raw + `}`)
		if !doc.Get("providers").Exists() {
			return nil
		}
	}

	var found *Selection
	quotas.ForEach(func(_, quota gjson.Result) bool {
		quota.Get("providers").ForEach(func(providerID, provider gjson.Result) bool {
			selectedName := provider.Get("models.selectedModel").String()
			provider.Get("models.models").ForEach(func(_, model gjson.Result) bool {
				name := model.Get("name").String()
				if name == "" {
					return true
				}
				if model.Get("selected").Bool() || (selectedName != "" && name == selectedName) {
					found = &Selection{
						Provider:  providerID.String(),
						ModelName: name,
						BaseURL:   provider.Get("baseUrl").String(),
					}
					if overrides := model.Get("overrides"); overrides.IsObject() {
						found.ModelParams = paramsFromResult(overrides)
					}
					return false
				}
				return true
			})
			return found == nil
		})
		return found == nil
	})
	return found
}

func paramsFromResult(res gjson.Result) tree.Parameters {
	var p tree.Parameters
	if v := res.Get("reasoningEffort"); v.Exists() {
		s := v.String()
		p.ReasoningEffort = &s
	}
	if v := res.Get("verbosity"); v.Exists() {
		s := v.String()
		p.Verbosity = &s
	}
	if v := res.Get("includeReasoning"); v.Exists() {
		b := v.Bool()
		p.IncludeReasoning = &b
	}
	if v := res.Get("temperature"); v.Exists() {
		f := v.Float()
		p.Temperature = &f
	}
	if v := res.Get("topP"); v.Exists() {
		f := v.Float()
		p.TopP = &f
	}
	if v := res.Get("maxTokens"); v.Exists() {
		n := int(v.Int())
		p.MaxTokens = &n
	}
	return p
}

// SearchDirs returns the directories scanned for selection files, in
// precedence order: project-local state directory, the process working
// directory, then the user's home state directory.
func SearchDirs() []string {
	dirs := []string{util.ProjectStateDir()}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	dirs = append(dirs, util.HomeStateDir())
	return dirs
}

// DefaultWritePath is where WriteSelection persists by default.
func DefaultWritePath() string {
	return filepath.Join(util.HomeStateDir(), CandidateFilenames[0])
}
