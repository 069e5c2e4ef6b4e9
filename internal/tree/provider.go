// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"os"

	"github.com/traylinx/switchAIRouter/internal/constant"
	"github.com/traylinx/switchAIRouter/internal/secret"
)

// ProviderNode identifies one backend and composes its four mandatory
// children in the fixed order Config, Models, Usage, Metrics. An optional
// fifth Panel child exists when the opt-in environment flag is set.
//
// The credential itself is never stored on the node or serialized; only the
// environment variable name travels with the tree. HasAPIKey is computed
// from the live environment on every call.
type ProviderNode struct {
	id       string
	provider string

	enabled     bool
	baseURL     string
	envVar      string
	bayesWeight float64
	defaults    Parameters

	config  *ConfigNode
	models  *ModelsNode
	usage   *UsageNode
	metrics *MetricsNode
	panel   *PanelNode
}

// NewProviderNode constructs a provider with its mandatory children wired
// in. envVar may be empty, in which case the canonical name derived from the
// provider identifier is used.
func NewProviderNode(providerID, envVar, baseURL string) *ProviderNode {
	if envVar == "" {
		envVar = secret.CanonicalEnvVar(providerID)
	}
	p := &ProviderNode{
		id:          "provider-" + providerID,
		provider:    providerID,
		enabled:     true,
		baseURL:     baseURL,
		envVar:      envVar,
		bayesWeight: 1.0,
	}
	p.config = newConfigNode(providerID+"-config", providerID+" config", p.connectionView, p.applyConnection)
	p.models = NewModelsNode(providerID+"-models", providerID+" models")
	p.usage = NewUsageNode(providerID+"-usage", providerID+" usage")
	p.metrics = NewMetricsNode(providerID+"-metrics", providerID+" metrics")
	if os.Getenv(constant.PanelChildEnv) == "1" {
		p.panel = newPanelNode(providerID+"-panel", providerID+" panel")
	}
	return p
}

func (p *ProviderNode) ID() string     { return p.id }
func (p *ProviderNode) Label() string  { return p.provider }
func (p *ProviderNode) Kind() NodeKind { return KindProvider }

// Children returns the fixed-order children: Config, Models, Usage, Metrics,
// and the Panel child when present.
func (p *ProviderNode) Children() []Node {
	children := []Node{p.config, p.models, p.usage, p.metrics}
	if p.panel != nil {
		children = append(children, p.panel)
	}
	return children
}

// ProviderID returns the backend identifier (e.g. "openai").
func (p *ProviderNode) ProviderID() string { return p.provider }

// Enabled reports whether the provider participates in routing.
func (p *ProviderNode) Enabled() bool { return p.enabled }

// SetEnabled toggles routing participation.
func (p *ProviderNode) SetEnabled(enabled bool) { p.enabled = enabled }

// BaseURL returns the provider's endpoint override, or "".
func (p *ProviderNode) BaseURL() string { return p.baseURL }

// SetBaseURL sets the provider's endpoint override.
func (p *ProviderNode) SetBaseURL(url string) { p.baseURL = url }

// EnvVar returns the name of the credential environment variable.
func (p *ProviderNode) EnvVar() string { return p.envVar }

// BayesWeight returns the routing tie-break multiplier.
func (p *ProviderNode) BayesWeight() float64 { return p.bayesWeight }

// Defaults returns the provider-level default request parameters.
func (p *ProviderNode) Defaults() Parameters { return p.defaults }

// SetDefaults replaces the provider-level default request parameters.
func (p *ProviderNode) SetDefaults(params Parameters) { p.defaults = params }

// Models returns the provider's model catalog node.
func (p *ProviderNode) Models() *ModelsNode { return p.models }

// Usage returns the provider's quota ledger.
func (p *ProviderNode) Usage() *UsageNode { return p.usage }

// Metrics returns the provider's outcome ledger.
func (p *ProviderNode) Metrics() *MetricsNode { return p.metrics }

// Config returns the provider's read-through config view.
func (p *ProviderNode) Config() *ConfigNode { return p.config }

// HasAPIKey reports whether the credential environment variable (or a
// documented legacy alias) is currently set. Computed, never stored.
func (p *ProviderNode) HasAPIKey() bool {
	_, ok := secret.Resolve(p.envVar)
	return ok
}

// APIKey resolves the provider's credential from the live environment.
func (p *ProviderNode) APIKey() (string, bool) {
	return secret.Resolve(p.envVar)
}

// EffectiveModelParameters returns the named model's overrides layered on
// the provider defaults. The bool result is false when the model is unknown.
func (p *ProviderNode) EffectiveModelParameters(modelName string) (Parameters, bool) {
	model := p.models.Model(modelName)
	if model == nil {
		return Parameters{}, false
	}
	return model.EffectiveParameters(p.defaults), true
}

// RecordRequest runs quota admission and records the outcome on both the
// provider-level metrics ledger and, when the model is known, the model's
// private tally. Returns false when the request was rejected or errored.
func (p *ProviderNode) RecordRequest(modelName string, tokens, latencyMs int64, errMsg string) bool {
	ok := p.metrics.RecordRequest(p.usage, tokens, latencyMs, errMsg)
	if model := p.models.Model(modelName); model != nil {
		model.RecordOutcome(latencyMs, !ok)
	}
	return ok
}

// connectionView is the ConfigNode read closure.
func (p *ProviderNode) connectionView() map[string]any {
	out := map[string]any{
		"provider": p.provider,
		"enabled":  p.enabled,
		"envVar":   p.envVar,
		// Computed from the environment, never persisted.
		"hasApiKey": p.HasAPIKey(),
	}
	if p.baseURL != "" {
		out["baseUrl"] = p.baseURL
	}
	return out
}

// applyConnection is the ConfigNode write closure.
func (p *ProviderNode) applyConnection(raw map[string]any) error {
	if enabled, ok := jsonBool(raw, "enabled"); ok {
		p.enabled = enabled
	}
	if baseURL, ok := jsonString(raw, "baseUrl"); ok {
		p.baseURL = baseURL
	}
	if envVar, ok := jsonString(raw, "envVar"); ok && envVar != "" {
		p.envVar = envVar
	}
	return nil
}

func (p *ProviderNode) ToJSON() map[string]any {
	out := map[string]any{
		"id":          p.id,
		"label":       p.provider,
		"type":        string(KindProvider),
		"provider":    p.provider,
		"enabled":     p.enabled,
		"envVar":      p.envVar,
		"bayesWeight": p.bayesWeight,
		"config":      p.config.ToJSON(),
		"models":      p.models.ToJSON(),
		"usage":       p.usage.ToJSON(),
		"metrics":     p.metrics.ToJSON(),
	}
	if p.baseURL != "" {
		out["baseUrl"] = p.baseURL
	}
	if !p.defaults.IsZero() {
		out["defaultParams"] = p.defaults.ToJSON()
	}
	if p.panel != nil {
		out["panel"] = p.panel.ToJSON()
	}
	return out
}

// ApplyJSON restores enabled, baseUrl, bayesWeight, and the default
// parameter block, then delegates nested child projections to the children.
// Credential values are never read from the projection.
func (p *ProviderNode) ApplyJSON(raw map[string]any) error {
	if enabled, ok := jsonBool(raw, "enabled"); ok {
		p.enabled = enabled
	}
	if baseURL, ok := jsonString(raw, "baseUrl"); ok {
		p.baseURL = baseURL
	}
	if envVar, ok := jsonString(raw, "envVar"); ok && envVar != "" {
		p.envVar = envVar
	}
	if weight, ok := jsonFloat(raw, "bayesWeight"); ok {
		// The weight multiplies the routing score; zero or negative would
		// pin the provider to the bottom of every ranking.
		if weight <= 0 {
			return fmt.Errorf("bayesWeight must be positive, got %v", weight)
		}
		p.bayesWeight = weight
	}
	if defaults, ok := jsonMap(raw, "defaultParams"); ok {
		p.defaults = parametersFromJSON(defaults)
	}
	if models, ok := jsonMap(raw, "models"); ok {
		if err := p.models.ApplyJSON(models); err != nil {
			return err
		}
	}
	if usage, ok := jsonMap(raw, "usage"); ok {
		if err := p.usage.ApplyJSON(usage); err != nil {
			return err
		}
	}
	if metrics, ok := jsonMap(raw, "metrics"); ok {
		if err := p.metrics.ApplyJSON(metrics); err != nil {
			return err
		}
	}
	if panel, ok := jsonMap(raw, "panel"); ok && p.panel != nil {
		if err := p.panel.ApplyJSON(panel); err != nil {
			return err
		}
	}
	return nil
}

// PanelNode is the optional fifth provider child carrying UI panel
// preferences. It exists only when the opt-in flag is set and holds nothing
// the engine itself depends on.
type PanelNode struct {
	id        string
	label     string
	collapsed bool
}

func newPanelNode(id, label string) *PanelNode {
	return &PanelNode{id: id, label: label}
}

func (n *PanelNode) ID() string       { return n.id }
func (n *PanelNode) Label() string    { return n.label }
func (n *PanelNode) Kind() NodeKind   { return KindPanel }
func (n *PanelNode) Children() []Node { return nil }

func (n *PanelNode) ToJSON() map[string]any {
	return map[string]any{
		"id":        n.id,
		"label":     n.label,
		"type":      string(KindPanel),
		"collapsed": n.collapsed,
	}
}

func (n *PanelNode) ApplyJSON(raw map[string]any) error {
	if collapsed, ok := jsonBool(raw, "collapsed"); ok {
		n.collapsed = collapsed
	}
	return nil
}
