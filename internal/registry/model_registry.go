// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry provides the static model catalog for all supported
// providers. The catalog is the source of truth used to populate each
// provider's models during tree initialization; dynamic discovery can layer
// one additional provider on top of it at runtime.
package registry

import (
	"sort"
	"strings"
	"sync"
)

// ModelInfo describes one model a provider can serve.
type ModelInfo struct {
	// ID is the unique identifier for the model within its provider.
	ID string `json:"id"`
	// Vendor is the organization that owns the model.
	Vendor string `json:"vendor,omitempty"`
	// Family groups model generations (e.g. "gpt-5", "claude-4").
	Family string `json:"family,omitempty"`
	// MaxInputTokens is the context window size in tokens.
	MaxInputTokens int `json:"maxInputTokens,omitempty"`
	// SupportsReasoning indicates the model accepts a reasoning-effort parameter.
	SupportsReasoning bool `json:"supportsReasoning,omitempty"`
	// SupportsVision indicates the model accepts image input.
	SupportsVision bool `json:"supportsVision,omitempty"`
}

// Clone returns a deep copy of the model info.
func (m *ModelInfo) Clone() *ModelInfo {
	if m == nil {
		return nil
	}
	copyModel := *m
	return &copyModel
}

// ModelRegistry holds the per-provider catalog of known models.
type ModelRegistry struct {
	models map[string][]*ModelInfo
	mutex  sync.RWMutex
}

var (
	globalRegistry *ModelRegistry
	registryOnce   sync.Once
)

// NewModelRegistry creates a registry pre-populated with the static catalog.
func NewModelRegistry() *ModelRegistry {
	r := &ModelRegistry{models: make(map[string][]*ModelInfo)}
	for provider, models := range staticCatalog {
		r.register(provider, models)
	}
	return r
}

// GetGlobalRegistry returns the process-wide model registry instance.
func GetGlobalRegistry() *ModelRegistry {
	registryOnce.Do(func() {
		globalRegistry = NewModelRegistry()
	})
	return globalRegistry
}

func (r *ModelRegistry) register(provider string, models []*ModelInfo) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" || len(models) == 0 {
		return
	}
	copied := make([]*ModelInfo, 0, len(models))
	for _, m := range models {
		if m == nil || m.ID == "" {
			continue
		}
		copied = append(copied, m.Clone())
	}
	r.models[provider] = copied
}

// Register adds or replaces the catalog entries for a provider. Used by
// dynamic discovery to record a runtime-discovered catalog.
func (r *ModelRegistry) Register(provider string, models []*ModelInfo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.register(provider, models)
}

// ModelsFor returns the catalog entries for a provider, or nil when the
// provider is unknown. Callers receive clones and may mutate them freely.
func (r *ModelRegistry) ModelsFor(provider string) []*ModelInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entries, ok := r.models[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return nil
	}
	result := make([]*ModelInfo, 0, len(entries))
	for _, m := range entries {
		result = append(result, m.Clone())
	}
	return result
}

// Providers returns the provider identifiers present in the catalog, sorted.
func (r *ModelRegistry) Providers() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	providers := make([]string, 0, len(r.models))
	for provider := range r.models {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}

// HasProvider reports whether the catalog knows the given provider.
func (r *ModelRegistry) HasProvider(provider string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.models[strings.ToLower(strings.TrimSpace(provider))]
	return ok
}
