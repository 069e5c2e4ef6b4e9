// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tree

// ConfigNode is a thin read-through view of its provider's connection
// settings. It holds no state of its own: reads and writes are delegated to
// the owning provider through the closures supplied at construction, so the
// view can never drift from the provider.
type ConfigNode struct {
	id    string
	label string

	view  func() map[string]any
	apply func(raw map[string]any) error
}

// newConfigNode is called by the provider constructor with closures over the
// provider's connection settings.
func newConfigNode(id, label string, view func() map[string]any, apply func(map[string]any) error) *ConfigNode {
	return &ConfigNode{id: id, label: label, view: view, apply: apply}
}

func (c *ConfigNode) ID() string       { return c.id }
func (c *ConfigNode) Label() string    { return c.label }
func (c *ConfigNode) Kind() NodeKind   { return KindConfig }
func (c *ConfigNode) Children() []Node { return nil }

func (c *ConfigNode) ToJSON() map[string]any {
	out := map[string]any{
		"id":    c.id,
		"label": c.label,
		"type":  string(KindConfig),
	}
	for k, v := range c.view() {
		out[k] = v
	}
	return out
}

func (c *ConfigNode) ApplyJSON(raw map[string]any) error {
	return c.apply(raw)
}
