// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package graph exposes generic, node-id-addressed CRUD operations over the
// provider tree so UI and CLI layers never need compile-time knowledge of
// node subtypes. Every operation returns a Result envelope; nothing in this
// package panics or returns a Go error across the boundary.
//
// The facade serializes tree mutation with a single mutex, satisfying the
// engine's single-writer discipline for external callers.
package graph

import (
	"fmt"
	"sync"

	"github.com/traylinx/switchAIRouter/internal/tree"
)

// Result is the uniform envelope every facade operation returns.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`

	// NotFound marks a failure caused by a missing node or unknown kind
	// rather than a rejected operation. Transport layers map it to 404.
	NotFound bool `json:"-"`
}

func ok(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

func fail(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

func failNotFound(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...), NotFound: true}
}

// Facade wraps a provider tree with id-addressed CRUD operations.
type Facade struct {
	mu   sync.Mutex
	root *tree.ProviderTreeRoot
}

// NewFacade creates a facade over the given tree.
func NewFacade(root *tree.ProviderTreeRoot) *Facade {
	return &Facade{root: root}
}

// ReadNode returns the JSON projection of the node with the given id.
func (f *Facade) ReadNode(id string) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	node := f.root.FindNode(id)
	if node == nil {
		return failNotFound("node %s not found", id)
	}
	return ok(fmt.Sprintf("node %s", id), node.ToJSON())
}

// ReadAllProviders returns the projections of every provider across all
// quota realms.
func (f *Facade) ReadAllProviders() Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	providers := f.root.AllProviders()
	out := make([]map[string]any, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.ToJSON())
	}
	return ok(fmt.Sprintf("%d providers", len(out)), out)
}

// UpdateNode merges the given fields into the node with the given id.
// Only fields the node's concrete type understands are applied; unknown
// fields are ignored, not errors. The post-update projection is returned.
func (f *Facade) UpdateNode(id string, updates map[string]any) Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateNodeLocked(id, updates)
}

func (f *Facade) updateNodeLocked(id string, updates map[string]any) Result {
	node := f.root.FindNode(id)
	if node == nil {
		return failNotFound("node %s not found", id)
	}
	if err := node.ApplyJSON(updates); err != nil {
		return fail("failed to update node %s: %v", id, err)
	}
	return ok(fmt.Sprintf("updated node %s", id), node.ToJSON())
}

// DeleteProvider removes the provider from its owning quota realm. Fails
// when the provider does not exist.
func (f *Facade) DeleteProvider(providerID string) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.root.RemoveProvider(providerID) {
		return failNotFound("provider %s not found", providerID)
	}
	return ok(fmt.Sprintf("deleted provider %s", providerID), nil)
}

// BatchItem is one entry of a BatchUpdate request.
type BatchItem struct {
	NodeID  string         `json:"nodeId"`
	Updates map[string]any `json:"updates"`
}

// BatchItemResult reports one item's outcome within a batch.
type BatchItemResult struct {
	NodeID  string `json:"nodeId"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BatchUpdate applies each update independently; one item's failure does
// not abort the batch. The aggregate result reports per-item outcomes and
// succeeds when every item succeeded.
func (f *Facade) BatchUpdate(items []BatchItem) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := make([]BatchItemResult, 0, len(items))
	failures := 0
	for _, item := range items {
		r := f.updateNodeLocked(item.NodeID, item.Updates)
		if !r.Success {
			failures++
		}
		results = append(results, BatchItemResult{
			NodeID:  item.NodeID,
			Success: r.Success,
			Message: r.Message,
		})
	}

	if failures > 0 {
		return Result{
			Success: false,
			Message: fmt.Sprintf("%d of %d updates failed", failures, len(items)),
			Data:    results,
		}
	}
	return ok(fmt.Sprintf("applied %d updates", len(items)), results)
}

// Outcome reports the result of recording one request against a provider.
type Outcome struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// RecordOutcome runs quota admission for one request and records the
// outcome on the provider's ledgers (and the model's tally when the model
// is known). The Data payload is an Outcome: OK is false when admission
// rejected the request or an explicit error was reported, and Error holds
// the error actually recorded, including the synthetic quota error.
func (f *Facade) RecordOutcome(providerID, model string, tokens, latencyMs int64, errMsg string) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.root.Provider(providerID)
	if p == nil {
		return failNotFound("provider %s not found", providerID)
	}
	admitted := p.RecordRequest(model, tokens, latencyMs, errMsg)
	recorded := errMsg
	if !admitted && recorded == "" {
		recorded = tree.QuotaExceededError
	}
	return ok(fmt.Sprintf("recorded request for %s", providerID), Outcome{
		Provider: providerID,
		Model:    model,
		OK:       admitted,
		Error:    recorded,
	})
}

// ExportGraph returns the full tree projection.
func (f *Facade) ExportGraph() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ok("graph export", f.root.ToJSON())
}

// QueryByType returns the projections of every node of the given kind.
func (f *Facade) QueryByType(kind string) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !tree.ValidKind(kind) {
		return failNotFound("unknown node type %q", kind)
	}
	want := tree.NodeKind(kind)

	var out []map[string]any
	tree.Walk(f.root, func(n tree.Node) bool {
		if n.Kind() == want {
			out = append(out, n.ToJSON())
		}
		return true
	})
	return ok(fmt.Sprintf("%d nodes of type %s", len(out), kind), out)
}

// Stats returns node counts by kind plus the aggregate metrics view.
func (f *Facade) Stats() Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[string]int)
	total := 0
	tree.Walk(f.root, func(n tree.Node) bool {
		counts[string(n.Kind())]++
		total++
		return true
	})

	return ok("graph stats", map[string]any{
		"nodeCount":    total,
		"countsByType": counts,
		"totalMetrics": f.root.GetTotalMetrics(),
	})
}
