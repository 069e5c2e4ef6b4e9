// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"sort"
)

// QuotaNode is a named grouping of providers (a quota realm). Providers are
// keyed by provider identity and unique within a realm.
type QuotaNode struct {
	id        string
	quotaName string

	providers map[string]*ProviderNode
}

// NewQuotaNode creates an empty realm with the given name.
func NewQuotaNode(name string) *QuotaNode {
	return &QuotaNode{
		id:        "quota-" + name,
		quotaName: name,
		providers: make(map[string]*ProviderNode),
	}
}

func (q *QuotaNode) ID() string     { return q.id }
func (q *QuotaNode) Label() string  { return q.quotaName }
func (q *QuotaNode) Kind() NodeKind { return KindQuota }

// QuotaName returns the realm name.
func (q *QuotaNode) QuotaName() string { return q.quotaName }

// Children returns the realm's providers ordered by provider id for
// deterministic traversal.
func (q *QuotaNode) Children() []Node {
	ids := q.providerIDs()
	children := make([]Node, 0, len(ids))
	for _, id := range ids {
		children = append(children, q.providers[id])
	}
	return children
}

func (q *QuotaNode) providerIDs() []string {
	ids := make([]string, 0, len(q.providers))
	for id := range q.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Provider returns the realm's provider with the given provider identity,
// or nil.
func (q *QuotaNode) Provider(providerID string) *ProviderNode {
	return q.providers[providerID]
}

// Providers returns the realm's providers ordered by provider id.
func (q *QuotaNode) Providers() []*ProviderNode {
	ids := q.providerIDs()
	out := make([]*ProviderNode, 0, len(ids))
	for _, id := range ids {
		out = append(out, q.providers[id])
	}
	return out
}

// AddProvider inserts a provider into the realm. Provider identity must be
// unique per realm.
func (q *QuotaNode) AddProvider(p *ProviderNode) error {
	if p == nil {
		return fmt.Errorf("nil provider")
	}
	if _, exists := q.providers[p.ProviderID()]; exists {
		return fmt.Errorf("provider %s already exists in quota realm %s", p.ProviderID(), q.quotaName)
	}
	q.providers[p.ProviderID()] = p
	return nil
}

// RemoveProvider removes the provider with the given identity. Returns
// false when no such provider exists.
func (q *QuotaNode) RemoveProvider(providerID string) bool {
	if _, exists := q.providers[providerID]; !exists {
		return false
	}
	delete(q.providers, providerID)
	return true
}

func (q *QuotaNode) ToJSON() map[string]any {
	providers := make(map[string]any, len(q.providers))
	for id, p := range q.providers {
		providers[id] = p.ToJSON()
	}
	return map[string]any{
		"id":        q.id,
		"type":      string(KindQuota),
		"quotaName": q.quotaName,
		"providers": providers,
	}
}

func (q *QuotaNode) ApplyJSON(raw map[string]any) error {
	providers, ok := jsonMap(raw, "providers")
	if !ok {
		return nil
	}
	for providerID, entry := range providers {
		providerRaw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		existing := q.providers[providerID]
		if existing == nil {
			envVar, _ := jsonString(providerRaw, "envVar")
			baseURL, _ := jsonString(providerRaw, "baseUrl")
			existing = NewProviderNode(providerID, envVar, baseURL)
			q.providers[providerID] = existing
		}
		if err := existing.ApplyJSON(providerRaw); err != nil {
			return fmt.Errorf("failed to restore provider %s: %w", providerID, err)
		}
	}
	return nil
}
