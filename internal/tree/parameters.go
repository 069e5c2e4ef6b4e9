// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

// Parameters is the request parameter block shared by provider defaults and
// per-model overrides. A nil pointer means "not set": on a provider it means
// the engine default applies, on a model it means the provider default is
// inherited.
type Parameters struct {
	ReasoningEffort  *string  `json:"reasoningEffort,omitempty"`
	Verbosity        *string  `json:"verbosity,omitempty"`
	IncludeReasoning *bool    `json:"includeReasoning,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	MaxTokens        *int     `json:"maxTokens,omitempty"`
}

// Merge layers p over base: for each field, p's value wins when set,
// otherwise base's value is used. Neither receiver nor argument is mutated.
func (p Parameters) Merge(base Parameters) Parameters {
	out := base
	if p.ReasoningEffort != nil {
		out.ReasoningEffort = p.ReasoningEffort
	}
	if p.Verbosity != nil {
		out.Verbosity = p.Verbosity
	}
	if p.IncludeReasoning != nil {
		out.IncludeReasoning = p.IncludeReasoning
	}
	if p.Temperature != nil {
		out.Temperature = p.Temperature
	}
	if p.TopP != nil {
		out.TopP = p.TopP
	}
	if p.MaxTokens != nil {
		out.MaxTokens = p.MaxTokens
	}
	return out
}

// IsZero reports whether no field is set.
func (p Parameters) IsZero() bool {
	return p.ReasoningEffort == nil && p.Verbosity == nil && p.IncludeReasoning == nil &&
		p.Temperature == nil && p.TopP == nil && p.MaxTokens == nil
}

// ToJSON returns the map projection of the parameter block, omitting unset
// fields.
func (p Parameters) ToJSON() map[string]any {
	out := make(map[string]any)
	if p.ReasoningEffort != nil {
		out["reasoningEffort"] = *p.ReasoningEffort
	}
	if p.Verbosity != nil {
		out["verbosity"] = *p.Verbosity
	}
	if p.IncludeReasoning != nil {
		out["includeReasoning"] = *p.IncludeReasoning
	}
	if p.Temperature != nil {
		out["temperature"] = *p.Temperature
	}
	if p.TopP != nil {
		out["topP"] = *p.TopP
	}
	if p.MaxTokens != nil {
		out["maxTokens"] = *p.MaxTokens
	}
	return out
}

// parametersFromJSON builds a Parameters block from a map projection.
// Fields absent from the map stay unset.
func parametersFromJSON(raw map[string]any) Parameters {
	var p Parameters
	if s, ok := jsonString(raw, "reasoningEffort"); ok {
		p.ReasoningEffort = &s
	}
	if s, ok := jsonString(raw, "verbosity"); ok {
		p.Verbosity = &s
	}
	if b, ok := jsonBool(raw, "includeReasoning"); ok {
		p.IncludeReasoning = &b
	}
	if f, ok := jsonFloat(raw, "temperature"); ok {
		p.Temperature = &f
	}
	if f, ok := jsonFloat(raw, "topP"); ok {
		p.TopP = &f
	}
	if n, ok := jsonInt(raw, "maxTokens"); ok {
		v := int(n)
		p.MaxTokens = &v
	}
	return p
}
