// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/switchAIRouter/internal/constant"
	"github.com/traylinx/switchAIRouter/internal/discovery"
	"github.com/traylinx/switchAIRouter/internal/registry"
)

// RootNodeID is the stable id of the tree root.
const RootNodeID = "provider-tree-root"

// CatalogProber is the dynamic discovery dependency of the root. A nil
// probe result means "no dynamic provider available" and is never an error.
type CatalogProber interface {
	Probe(ctx context.Context) *discovery.ProviderCatalog
}

// staticProviders lists the providers wired in synchronously at
// construction, in registration order.
var staticProviders = []string{
	constant.OpenAI,
	constant.Anthropic,
	constant.Gemini,
	constant.Groq,
	constant.Mistral,
	constant.OpenRouter,
}

// ProviderTreeRoot owns all quota realms and orchestrates model-catalog
// initialization, aggregate metrics, and JSON persistence. It is
// constructed synchronously with the static providers pre-populated in the
// default "identity" realm; Initialize is the asynchronous step that fills
// in model catalogs and is safe to call repeatedly.
type ProviderTreeRoot struct {
	quotas     map[string]*QuotaNode
	quotaOrder []string

	registry *registry.ModelRegistry
	prober   CatalogProber
}

// TreeOption customizes tree construction.
type TreeOption func(*ProviderTreeRoot)

// WithRegistry injects a model registry (the global one is used otherwise).
func WithRegistry(r *registry.ModelRegistry) TreeOption {
	return func(t *ProviderTreeRoot) { t.registry = r }
}

// WithProber injects the dynamic discovery prober. Passing nil disables
// dynamic discovery.
func WithProber(p CatalogProber) TreeOption {
	return func(t *ProviderTreeRoot) { t.prober = p }
}

// NewProviderTree constructs the tree with all static providers wired into
// the default quota realm.
func NewProviderTree(opts ...TreeOption) *ProviderTreeRoot {
	t := &ProviderTreeRoot{
		quotas: make(map[string]*QuotaNode),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.registry == nil {
		t.registry = registry.GetGlobalRegistry()
	}

	realm := t.EnsureQuota(constant.DefaultQuotaRealm)
	for _, providerID := range staticProviders {
		if err := realm.AddProvider(NewProviderNode(providerID, "", "")); err != nil {
			// Static provider ids are unique by construction.
			log.Warnf("Failed to register static provider %s: %v", providerID, err)
		}
	}
	return t
}

func (t *ProviderTreeRoot) ID() string     { return RootNodeID }
func (t *ProviderTreeRoot) Label() string  { return "providers" }
func (t *ProviderTreeRoot) Kind() NodeKind { return KindRoot }

// Children returns the quota realms in creation order.
func (t *ProviderTreeRoot) Children() []Node {
	children := make([]Node, 0, len(t.quotaOrder))
	for _, name := range t.quotaOrder {
		children = append(children, t.quotas[name])
	}
	return children
}

// Quota returns the realm with the given name, or nil.
func (t *ProviderTreeRoot) Quota(name string) *QuotaNode {
	return t.quotas[name]
}

// EnsureQuota returns the realm with the given name, creating it if needed.
func (t *ProviderTreeRoot) EnsureQuota(name string) *QuotaNode {
	if realm, ok := t.quotas[name]; ok {
		return realm
	}
	realm := NewQuotaNode(name)
	t.quotas[name] = realm
	t.quotaOrder = append(t.quotaOrder, name)
	return realm
}

// Initialize populates every provider's model catalog from the static
// registry and, best effort, inserts one dynamically discovered provider.
// Discovery failure is never fatal or user-visible. Safe to invoke
// repeatedly: catalogs are re-populated idempotently and recorded state is
// preserved.
func (t *ProviderTreeRoot) Initialize(ctx context.Context) error {
	// Best-effort dynamic discovery first so its catalog lands in the
	// registry before repopulation.
	if t.prober != nil {
		if catalog := t.prober.Probe(ctx); catalog != nil {
			t.registry.Register(catalog.ProviderID, catalog.Models)
			realm := t.EnsureQuota(constant.DefaultQuotaRealm)
			if realm.Provider(catalog.ProviderID) == nil {
				node := NewProviderNode(catalog.ProviderID, "", catalog.BaseURL)
				if err := realm.AddProvider(node); err != nil {
					log.Warnf("Failed to insert discovered provider %s: %v", catalog.ProviderID, err)
				} else {
					log.Infof("Registered dynamic provider %s with %d models", catalog.ProviderID, len(catalog.Models))
				}
			}
		}
	}

	for _, provider := range t.AllProviders() {
		infos := t.registry.ModelsFor(provider.ProviderID())
		fresh := make([]*ModelNode, 0, len(infos))
		for _, info := range infos {
			id := provider.ProviderID() + "-model-" + info.ID
			fresh = append(fresh, NewModelNode(id, info.ID, info.MaxInputTokens, info.SupportsReasoning, info.SupportsVision))
		}
		if len(fresh) == 0 {
			continue
		}
		provider.Models().ReplacePreservingState(fresh)
	}
	return nil
}

// AllProviders returns the aggregated view of providers across all quota
// realms, ordered realm by realm.
func (t *ProviderTreeRoot) AllProviders() []*ProviderNode {
	var out []*ProviderNode
	for _, name := range t.quotaOrder {
		out = append(out, t.quotas[name].Providers()...)
	}
	return out
}

// ActiveProviders returns the providers across all realms that are enabled
// and have a resolvable credential.
func (t *ProviderTreeRoot) ActiveProviders() []*ProviderNode {
	var out []*ProviderNode
	for _, p := range t.AllProviders() {
		if p.Enabled() && p.HasAPIKey() {
			out = append(out, p)
		}
	}
	return out
}

// Provider finds a provider by its provider identity across all realms.
func (t *ProviderTreeRoot) Provider(providerID string) *ProviderNode {
	for _, name := range t.quotaOrder {
		if p := t.quotas[name].Provider(providerID); p != nil {
			return p
		}
	}
	return nil
}

// RemoveProvider removes a provider from whichever realm owns it. Returns
// false when the provider does not exist.
func (t *ProviderTreeRoot) RemoveProvider(providerID string) bool {
	for _, name := range t.quotaOrder {
		if t.quotas[name].RemoveProvider(providerID) {
			return true
		}
	}
	return false
}

// RankedProviders returns the active providers ordered by their weighted
// Bayesian score, best first. The provider's bayesWeight multiplies the
// score as a routing tie-break; name order breaks exact ties
// deterministically.
func (t *ProviderTreeRoot) RankedProviders() []*ProviderNode {
	ranked := t.ActiveProviders()
	sort.SliceStable(ranked, func(i, j int) bool {
		si := ranked[i].Metrics().BayesianScore() * ranked[i].BayesWeight()
		sj := ranked[j].Metrics().BayesianScore() * ranked[j].BayesWeight()
		if si == sj {
			return ranked[i].ProviderID() < ranked[j].ProviderID()
		}
		return si > sj
	})
	return ranked
}

// TotalMetrics is the aggregate outcome view across all providers.
type TotalMetrics struct {
	TotalRequests int64   `json:"totalRequests"`
	SuccessCount  int64   `json:"successCount"`
	ErrorCount    int64   `json:"errorCount"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
	SuccessRate   float64 `json:"successRate"`
}

// GetTotalMetrics aggregates request totals across all providers. The
// latency figure is the arithmetic mean of per-provider average latency,
// taken only over providers with at least one success.
func (t *ProviderTreeRoot) GetTotalMetrics() TotalMetrics {
	var out TotalMetrics
	var latencySum float64
	var latencyProviders int

	for _, p := range t.AllProviders() {
		m := p.Metrics()
		out.TotalRequests += m.TotalRequests()
		out.SuccessCount += m.SuccessCount()
		out.ErrorCount += m.ErrorCount()
		if m.SuccessCount() > 0 {
			latencySum += m.AvgLatencyMs()
			latencyProviders++
		}
	}
	if latencyProviders > 0 {
		out.AvgLatencyMs = latencySum / float64(latencyProviders)
	}
	if out.TotalRequests > 0 {
		out.SuccessRate = float64(out.SuccessCount) / float64(out.TotalRequests) * 100
	}
	return out
}

// FindNode resolves a node id anywhere in the tree.
func (t *ProviderTreeRoot) FindNode(id string) Node {
	return FindNode(t, id)
}

func (t *ProviderTreeRoot) ToJSON() map[string]any {
	quotas := make(map[string]any, len(t.quotas))
	for name, realm := range t.quotas {
		quotas[name] = realm.ToJSON()
	}
	return map[string]any{
		"id":     RootNodeID,
		"type":   string(KindRoot),
		"quotas": quotas,
	}
}

// ApplyJSON merges a tree projection into the live tree, creating realms
// and providers as needed.
func (t *ProviderTreeRoot) ApplyJSON(raw map[string]any) error {
	quotas, ok := jsonMap(raw, "quotas")
	if !ok {
		return nil
	}
	for name, entry := range quotas {
		quotaRaw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		realm := t.EnsureQuota(name)
		if err := realm.ApplyJSON(quotaRaw); err != nil {
			return fmt.Errorf("failed to restore quota realm %s: %w", name, err)
		}
	}
	return nil
}
