// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestProviderNodeChildren(t *testing.T) {
	p := NewProviderNode("openai", "", "")

	children := p.Children()
	if len(children) != 4 {
		t.Fatalf("Expected 4 mandatory children, got %d", len(children))
	}
	wantKinds := []NodeKind{KindConfig, KindModels, KindUsage, KindMetrics}
	for i, kind := range wantKinds {
		if children[i].Kind() != kind {
			t.Errorf("Child %d: expected kind %s, got %s", i, kind, children[i].Kind())
		}
	}

	wantIDs := []string{"openai-config", "openai-models", "openai-usage", "openai-metrics"}
	for i, id := range wantIDs {
		if children[i].ID() != id {
			t.Errorf("Child %d: expected id %s, got %s", i, id, children[i].ID())
		}
	}
	if p.ID() != "provider-openai" {
		t.Errorf("Expected id provider-openai, got %s", p.ID())
	}
}

func TestProviderNodePanelChild(t *testing.T) {
	t.Setenv("SWITCHAI_ROUTER_PANEL", "1")
	p := NewProviderNode("openai", "", "")
	children := p.Children()
	if len(children) != 5 {
		t.Fatalf("Expected 5 children with the panel flag set, got %d", len(children))
	}
	if children[4].Kind() != KindPanel {
		t.Errorf("Expected the panel child last, got %s", children[4].Kind())
	}
}

func TestProviderNodeCredentials(t *testing.T) {
	t.Run("missing env", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		p := NewProviderNode("openai", "", "")
		if p.HasAPIKey() {
			t.Error("Expected no credential with the env var unset")
		}
	})

	t.Run("canonical env var", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		p := NewProviderNode("openai", "", "")
		if p.EnvVar() != "OPENAI_API_KEY" {
			t.Errorf("Expected canonical env var name, got %s", p.EnvVar())
		}
		key, ok := p.APIKey()
		if !ok || key != "sk-test" {
			t.Errorf("Expected resolved credential, got %q ok=%v", key, ok)
		}
	})

	t.Run("legacy alias", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		t.Setenv("CLAUDE_API_KEY", "sk-legacy")
		p := NewProviderNode("anthropic", "", "")
		key, ok := p.APIKey()
		if !ok || key != "sk-legacy" {
			t.Errorf("Expected legacy alias resolution, got %q ok=%v", key, ok)
		}
	})

	t.Run("computed live, not cached", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		p := NewProviderNode("openai", "", "")
		if p.HasAPIKey() {
			t.Fatal("Expected no credential initially")
		}
		t.Setenv("OPENAI_API_KEY", "sk-now")
		if !p.HasAPIKey() {
			t.Error("Expected HasAPIKey to see the live environment")
		}
	})
}

func TestProviderNodeJSONNeverLeaksCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-secret-value")
	p := NewProviderNode("openai", "", "https://api.openai.com/v1")
	p.Usage().SetLimits(1000, 0, 10)
	p.Metrics().RecordSuccess(100)

	data, err := json.Marshal(p.ToJSON())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	serialized := string(data)
	if strings.Contains(serialized, "sk-secret-value") {
		t.Fatal("Serialized provider must never contain the credential value")
	}
	if strings.Contains(serialized, `"apiKey"`) {
		t.Fatal("Serialized provider must not carry an apiKey field")
	}
	if !strings.Contains(serialized, `"envVar":"OPENAI_API_KEY"`) {
		t.Error("Serialized provider must carry the env var name")
	}
}

func TestProviderNodeJSONRoundTrip(t *testing.T) {
	p := NewProviderNode("mistral", "", "https://api.mistral.ai")
	p.SetEnabled(false)
	p.SetDefaults(Parameters{Temperature: floatPtr(0.4)})
	p.Models().AddModel(NewModelNode("mistral-model-mistral-large-latest", "mistral-large-latest", 128_000, false, false))
	p.Models().Select("mistral-large-latest")
	p.Usage().SetLimits(5000, 100_000, 3)
	p.Metrics().RecordError("timeout")

	restored := NewProviderNode("mistral", "", "")
	if err := restored.ApplyJSON(p.ToJSON()); err != nil {
		t.Fatalf("ApplyJSON failed: %v", err)
	}
	if restored.Enabled() {
		t.Error("Expected disabled state to survive the round trip")
	}
	if restored.BaseURL() != "https://api.mistral.ai" {
		t.Errorf("Expected baseUrl to survive, got %q", restored.BaseURL())
	}
	if restored.Defaults().Temperature == nil || *restored.Defaults().Temperature != 0.4 {
		t.Error("Expected defaults to survive the round trip")
	}
	if got := restored.Models().SelectedModel(); got != "mistral-large-latest" {
		t.Errorf("Expected the selection to survive, got %q", got)
	}
	if msg, _ := restored.Metrics().LastError(); msg != "timeout" {
		t.Errorf("Expected metrics to survive, got last error %q", msg)
	}
	if restored.Usage().CanConsume(5001) {
		t.Error("Expected usage limits to survive the round trip")
	}
}

func TestProviderNodeRecordRequest(t *testing.T) {
	p := NewProviderNode("groq", "", "")
	p.Models().AddModel(NewModelNode("groq-model-llama", "llama-3.3-70b-versatile", 128_000, false, false))
	p.Usage().SetLimits(100, 0, 0)

	if !p.RecordRequest("llama-3.3-70b-versatile", 50, 120, "") {
		t.Fatal("Expected in-quota request to succeed")
	}
	if p.RecordRequest("llama-3.3-70b-versatile", 60, 120, "") {
		t.Error("Expected over-quota request to be rejected")
	}

	model := p.Models().Model("llama-3.3-70b-versatile")
	if got := model.TotalRequests(); got != 2 {
		t.Errorf("Expected the model tally to see both outcomes, got %d", got)
	}
	if got := p.Metrics().TotalRequests(); got != 2 {
		t.Errorf("Expected the metrics ledger to see both outcomes, got %d", got)
	}
	if msg, _ := p.Metrics().LastError(); msg != QuotaExceededError {
		t.Errorf("Expected synthetic quota error, got %q", msg)
	}

	// Unknown model: provider metrics still record, no tally to update.
	if !p.RecordRequest("no-such-model", 0, 80, "") {
		t.Error("Expected request for an unknown model to still record on the provider")
	}
}

func TestConfigNodeReadThrough(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	p := NewProviderNode("groq", "", "")

	view := p.Config().ToJSON()
	if view["provider"] != "groq" {
		t.Errorf("Expected provider identity in the config view, got %v", view["provider"])
	}
	if view["hasApiKey"] != true {
		t.Error("Expected hasApiKey true with the env var set")
	}
	if _, present := view["apiKey"]; present {
		t.Error("Config view must not expose the credential")
	}

	if err := p.Config().ApplyJSON(map[string]any{"enabled": false, "baseUrl": "http://localhost:9999"}); err != nil {
		t.Fatalf("ApplyJSON failed: %v", err)
	}
	if p.Enabled() {
		t.Error("Expected config write to disable the provider")
	}
	if p.BaseURL() != "http://localhost:9999" {
		t.Errorf("Expected config write to set baseUrl, got %q", p.BaseURL())
	}
}

func TestProviderNodeApplyJSONRejectsBadWeight(t *testing.T) {
	p := NewProviderNode("openai", "OPENAI_API_KEY", "")
	if err := p.ApplyJSON(map[string]any{"bayesWeight": 2.0}); err != nil {
		t.Fatalf("Expected a positive weight to apply: %v", err)
	}
	if p.BayesWeight() != 2.0 {
		t.Errorf("Expected weight 2.0, got %v", p.BayesWeight())
	}
	for _, weight := range []float64{0, -1} {
		if err := p.ApplyJSON(map[string]any{"bayesWeight": weight}); err == nil {
			t.Errorf("Expected weight %v to be rejected", weight)
		}
	}
	if p.BayesWeight() != 2.0 {
		t.Errorf("Rejected writes must not change the weight, got %v", p.BayesWeight())
	}
}
