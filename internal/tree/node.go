// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tree implements the hierarchical provider routing state:
// quota realms own providers, providers own their config, model catalog,
// usage ledger, and metrics ledger. Every node round-trips through a JSON
// projection that never includes credential material.
//
// The tree is single-writer: callers must serialize mutations (the graph
// facade does this for external callers). The one exception is the usage
// ledger, which carries its own mutex so quota admission stays atomic even
// under concurrent recording.
package tree

import (
	"strings"
)

// NodeKind is the closed set of node types in the provider tree.
// Consumers switch exhaustively over these values instead of runtime type
// tests.
type NodeKind string

const (
	KindRoot     NodeKind = "root"
	KindQuota    NodeKind = "quota"
	KindProvider NodeKind = "provider"
	KindConfig   NodeKind = "config"
	KindModels   NodeKind = "models"
	KindModel    NodeKind = "model"
	KindUsage    NodeKind = "usage"
	KindMetrics  NodeKind = "metrics"
	KindPanel    NodeKind = "panel"
)

// ValidKind reports whether s names a known node kind.
func ValidKind(s string) bool {
	switch NodeKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRoot, KindQuota, KindProvider, KindConfig, KindModels, KindModel, KindUsage, KindMetrics, KindPanel:
		return true
	}
	return false
}

// Node is the contract every tree node implements. Node ids are stable and
// unique within a tree; each node owns its children exclusively.
type Node interface {
	// ID returns the node's stable identifier.
	ID() string
	// Label returns the node's display name.
	Label() string
	// Kind returns the node's type discriminant.
	Kind() NodeKind
	// Children returns the node's owned children in their fixed order.
	Children() []Node
	// ToJSON returns the node's serializable projection. The projection
	// never contains secret material.
	ToJSON() map[string]any
	// ApplyJSON merges the fields this node understands from raw into the
	// node. Unknown fields are ignored, not errors.
	ApplyJSON(raw map[string]any) error
}

// FindNode walks the subtree rooted at n depth-first and returns the node
// with the given id, or nil when no such node exists.
func FindNode(n Node, id string) Node {
	if n == nil || id == "" {
		return nil
	}
	if n.ID() == id {
		return n
	}
	for _, child := range n.Children() {
		if found := FindNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node in the subtree rooted at n depth-first, parents
// before children. The walk stops early when fn returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children() {
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}

// JSON field extraction helpers. JSON numbers arrive as float64; these
// normalize the conversions the ApplyJSON implementations need.

func jsonString(raw map[string]any, key string) (string, bool) {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

func jsonBool(raw map[string]any, key string) (bool, bool) {
	if v, ok := raw[key]; ok {
		if b, ok := v.(bool); ok {
			return b, true
		}
	}
	return false, false
}

func jsonFloat(raw map[string]any, key string) (float64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func jsonInt(raw map[string]any, key string) (int64, bool) {
	if f, ok := jsonFloat(raw, key); ok {
		return int64(f), true
	}
	return 0, false
}

func jsonMap(raw map[string]any, key string) (map[string]any, bool) {
	if v, ok := raw[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m, true
		}
	}
	return nil, false
}
