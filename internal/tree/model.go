// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"
)

// ModelNode is one model in a provider's catalog. The identity fields (name,
// token limit, capability flags) are immutable after construction; the
// parameter overrides and the private outcome tally are mutable. The tally
// is independent of the provider-level metrics ledger and feeds the model's
// own Bayesian score.
type ModelNode struct {
	id    string
	label string

	name              string
	tokenLimit        int
	supportsReasoning bool
	supportsVision    bool

	overrides Parameters

	totalRequests  int64
	successCount   int64
	errorCount     int64
	totalLatencyMs int64
}

// NewModelNode creates a model with the given immutable identity.
func NewModelNode(id, name string, tokenLimit int, supportsReasoning, supportsVision bool) *ModelNode {
	return &ModelNode{
		id:                id,
		label:             name,
		name:              name,
		tokenLimit:        tokenLimit,
		supportsReasoning: supportsReasoning,
		supportsVision:    supportsVision,
	}
}

func (m *ModelNode) ID() string       { return m.id }
func (m *ModelNode) Label() string    { return m.label }
func (m *ModelNode) Kind() NodeKind   { return KindModel }
func (m *ModelNode) Children() []Node { return nil }

// Name returns the model's immutable name.
func (m *ModelNode) Name() string { return m.name }

// TokenLimit returns the model's context window size.
func (m *ModelNode) TokenLimit() int { return m.tokenLimit }

// SupportsReasoning reports whether the model accepts a reasoning parameter.
func (m *ModelNode) SupportsReasoning() bool { return m.supportsReasoning }

// SupportsVision reports whether the model accepts image input.
func (m *ModelNode) SupportsVision() bool { return m.supportsVision }

// Overrides returns the model's parameter overrides.
func (m *ModelNode) Overrides() Parameters { return m.overrides }

// SetOverrides replaces the model's parameter overrides.
func (m *ModelNode) SetOverrides(p Parameters) { m.overrides = p }

// EffectiveParameters layers the model's overrides on the provider defaults.
// Evaluated fresh on every call; provider-default edits take effect
// immediately for all of the provider's models.
func (m *ModelNode) EffectiveParameters(providerDefaults Parameters) Parameters {
	return m.overrides.Merge(providerDefaults)
}

// RecordOutcome appends one request outcome to the model's private tally.
func (m *ModelNode) RecordOutcome(latencyMs int64, errored bool) {
	m.totalRequests++
	if errored {
		m.errorCount++
		return
	}
	m.successCount++
	if latencyMs > 0 {
		m.totalLatencyMs += latencyMs
	}
}

// TotalRequests returns the model's private request count.
func (m *ModelNode) TotalRequests() int64 { return m.totalRequests }

// AvgLatencyMs returns the model's average success latency, 0 with no
// successes.
func (m *ModelNode) AvgLatencyMs() float64 {
	if m.successCount == 0 {
		return 0
	}
	return float64(m.totalLatencyMs) / float64(m.successCount)
}

// BayesianScore mirrors the metrics ledger formula over the model's own
// tally.
func (m *ModelNode) BayesianScore() float64 {
	return bayesianScore(m.successCount, m.totalRequests, m.AvgLatencyMs())
}

// RankingGrade maps the model's Bayesian score to a letter grade.
func (m *ModelNode) RankingGrade() string {
	return rankingGrade(m.BayesianScore())
}

func (m *ModelNode) ToJSON() map[string]any {
	out := map[string]any{
		"id":                m.id,
		"label":             m.label,
		"type":              string(KindModel),
		"name":              m.name,
		"tokenLimit":        m.tokenLimit,
		"supportsReasoning": m.supportsReasoning,
		"supportsVision":    m.supportsVision,
		"totalRequests":     m.totalRequests,
		"successCount":      m.successCount,
		"errorCount":        m.errorCount,
		"totalLatencyMs":    m.totalLatencyMs,
		"bayesianScore":     m.BayesianScore(),
		"rankingGrade":      m.RankingGrade(),
	}
	if !m.overrides.IsZero() {
		out["overrides"] = m.overrides.ToJSON()
	}
	return out
}

func (m *ModelNode) ApplyJSON(raw map[string]any) error {
	if overrides, ok := jsonMap(raw, "overrides"); ok {
		m.overrides = parametersFromJSON(overrides)
	}
	if n, ok := jsonInt(raw, "totalRequests"); ok {
		m.totalRequests = n
	}
	if n, ok := jsonInt(raw, "successCount"); ok {
		m.successCount = n
	}
	if n, ok := jsonInt(raw, "errorCount"); ok {
		m.errorCount = n
	}
	if n, ok := jsonInt(raw, "totalLatencyMs"); ok {
		m.totalLatencyMs = n
	}
	return nil
}

// ModelsNode owns a provider's model catalog and tracks which model, if any,
// is currently selected. The selection invariant: SelectedModel is either
// empty or the name of an existing child.
type ModelsNode struct {
	id    string
	label string

	models        []*ModelNode
	selectedModel string
}

// NewModelsNode creates an empty catalog container.
func NewModelsNode(id, label string) *ModelsNode {
	return &ModelsNode{id: id, label: label}
}

func (n *ModelsNode) ID() string     { return n.id }
func (n *ModelsNode) Label() string  { return n.label }
func (n *ModelsNode) Kind() NodeKind { return KindModels }

func (n *ModelsNode) Children() []Node {
	children := make([]Node, 0, len(n.models))
	for _, m := range n.models {
		children = append(children, m)
	}
	return children
}

// Models returns the catalog entries in order.
func (n *ModelsNode) Models() []*ModelNode {
	return append([]*ModelNode(nil), n.models...)
}

// Model returns the child with the given name, or nil.
func (n *ModelsNode) Model(name string) *ModelNode {
	for _, m := range n.models {
		if m.name == name {
			return m
		}
	}
	return nil
}

// AddModel appends a model to the catalog. Duplicate names are rejected.
func (n *ModelsNode) AddModel(m *ModelNode) error {
	if m == nil {
		return fmt.Errorf("nil model")
	}
	if n.Model(m.name) != nil {
		return fmt.Errorf("model %s already exists", m.name)
	}
	n.models = append(n.models, m)
	return nil
}

// ReplacePreservingState swaps in a fresh catalog while carrying forward the
// overrides and tallies of models that survive the swap. Used by idempotent
// re-initialization so a rescan never loses recorded state.
func (n *ModelsNode) ReplacePreservingState(fresh []*ModelNode) {
	for _, incoming := range fresh {
		if existing := n.Model(incoming.name); existing != nil {
			incoming.overrides = existing.overrides
			incoming.totalRequests = existing.totalRequests
			incoming.successCount = existing.successCount
			incoming.errorCount = existing.errorCount
			incoming.totalLatencyMs = existing.totalLatencyMs
		}
	}
	n.models = fresh
	if n.selectedModel != "" && n.Model(n.selectedModel) == nil {
		n.selectedModel = ""
	}
}

// SelectedModel returns the selected model name, or "".
func (n *ModelsNode) SelectedModel() string { return n.selectedModel }

// Select marks the named model as selected. The name must match an existing
// child.
func (n *ModelsNode) Select(name string) error {
	if name == "" {
		n.selectedModel = ""
		return nil
	}
	if n.Model(name) == nil {
		return fmt.Errorf("model %s not found", name)
	}
	n.selectedModel = name
	return nil
}

func (n *ModelsNode) ToJSON() map[string]any {
	models := make([]map[string]any, 0, len(n.models))
	for _, m := range n.models {
		models = append(models, m.ToJSON())
	}
	out := map[string]any{
		"id":     n.id,
		"label":  n.label,
		"type":   string(KindModels),
		"models": models,
	}
	if n.selectedModel != "" {
		out["selectedModel"] = n.selectedModel
	}
	return out
}

func (n *ModelsNode) ApplyJSON(raw map[string]any) error {
	if models, ok := raw["models"].([]any); ok {
		for _, entry := range models {
			modelRaw, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			name, _ := jsonString(modelRaw, "name")
			if name == "" {
				continue
			}
			existing := n.Model(name)
			if existing == nil {
				tokenLimit, _ := jsonInt(modelRaw, "tokenLimit")
				reasoning, _ := jsonBool(modelRaw, "supportsReasoning")
				vision, _ := jsonBool(modelRaw, "supportsVision")
				id, _ := jsonString(modelRaw, "id")
				if id == "" {
					id = n.id + "-" + name
				}
				existing = NewModelNode(id, name, int(tokenLimit), reasoning, vision)
				n.models = append(n.models, existing)
			}
			if err := existing.ApplyJSON(modelRaw); err != nil {
				return err
			}
		}
	}
	if selected, ok := jsonString(raw, "selectedModel"); ok {
		// Tolerate a stale selection pointing at a model that no longer
		// exists; the invariant is restored by dropping it.
		if selected == "" || n.Model(selected) != nil {
			n.selectedModel = selected
		}
	}
	return nil
}
