// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package management exposes the graph facade and selection service over
// localhost HTTP. This is the surface the terminal UI, slash-command layer,
// and tooling consume; the engine itself has no other outward interface.
package management

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/switchAIRouter/internal/graph"
	"github.com/traylinx/switchAIRouter/internal/selection"
	"github.com/traylinx/switchAIRouter/internal/store"
)

// Handler carries the engine services the management routes operate on.
type Handler struct {
	facade  *graph.Facade
	watcher *selection.Watcher
	history *store.RequestLog
	selPath string
}

// NewHandler creates the management handler. history may be nil when
// request history is disabled; selPath is where selection writes land.
func NewHandler(facade *graph.Facade, watcher *selection.Watcher, history *store.RequestLog, selPath string) *Handler {
	if selPath == "" {
		selPath = selection.DefaultWritePath()
	}
	return &Handler{
		facade:  facade,
		watcher: watcher,
		history: history,
		selPath: selPath,
	}
}

// RegisterRoutes mounts the management API under /v0/management.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v0 := r.Group("/v0/management")
	{
		v0.GET("/providers", h.ListProviders)
		v0.DELETE("/providers/:id", h.DeleteProvider)
		v0.GET("/nodes/:id", h.ReadNode)
		v0.PATCH("/nodes/:id", h.UpdateNode)
		v0.POST("/nodes/batch", h.BatchUpdate)
		v0.POST("/requests", h.RecordRequest)
		v0.GET("/graph/export", h.ExportGraph)
		v0.GET("/graph/stats", h.Stats)
		v0.GET("/graph/nodes", h.QueryByType)
		v0.GET("/selection", h.CurrentSelection)
		v0.PUT("/selection", h.WriteSelection)
		v0.GET("/history", h.History)
	}
}

func respond(c *gin.Context, result graph.Result) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
		if result.NotFound {
			status = http.StatusNotFound
		}
	}
	c.JSON(status, result)
}

// ListProviders returns the projections of every provider.
// GET /v0/management/providers
func (h *Handler) ListProviders(c *gin.Context) {
	respond(c, h.facade.ReadAllProviders())
}

// ReadNode returns one node's projection by id.
// GET /v0/management/nodes/:id
func (h *Handler) ReadNode(c *gin.Context) {
	respond(c, h.facade.ReadNode(c.Param("id")))
}

// UpdateNode merges partial fields into one node.
// PATCH /v0/management/nodes/:id
func (h *Handler) UpdateNode(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	respond(c, h.facade.UpdateNode(c.Param("id"), updates))
}

// DeleteProvider removes a provider from its quota realm.
// DELETE /v0/management/providers/:id
func (h *Handler) DeleteProvider(c *gin.Context) {
	respond(c, h.facade.DeleteProvider(c.Param("id")))
}

// BatchUpdate applies several node updates independently.
// POST /v0/management/nodes/batch
func (h *Handler) BatchUpdate(c *gin.Context) {
	var items []graph.BatchItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	// Batch results carry per-item outcomes; partial failure is still a 200.
	c.JSON(http.StatusOK, h.facade.BatchUpdate(items))
}

// recordRequestBody is one reported request outcome. An empty Error means
// the request succeeded; quota admission may still reject it.
type recordRequestBody struct {
	Provider  string `json:"provider" binding:"required"`
	Model     string `json:"model"`
	Tokens    int64  `json:"tokens"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error"`
}

// RecordRequest runs quota admission for a reported request outcome and
// records it on the provider's ledgers and, best effort, in the history
// store. A quota rejection is still a 200: the envelope's Outcome carries
// ok=false and the recorded quota error.
// POST /v0/management/requests
func (h *Handler) RecordRequest(c *gin.Context) {
	var body recordRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	result := h.facade.RecordOutcome(body.Provider, body.Model, body.Tokens, body.LatencyMs, body.Error)
	if result.Success && h.history != nil {
		outcome := result.Data.(graph.Outcome)
		err := h.history.Append(c.Request.Context(), store.Entry{
			Provider:  outcome.Provider,
			Model:     outcome.Model,
			Tokens:    body.Tokens,
			LatencyMs: body.LatencyMs,
			Success:   outcome.OK,
			Error:     outcome.Error,
		})
		if err != nil {
			log.Warnf("Failed to append request history: %v", err)
		}
	}
	respond(c, result)
}

// ExportGraph returns the full tree projection.
// GET /v0/management/graph/export
func (h *Handler) ExportGraph(c *gin.Context) {
	respond(c, h.facade.ExportGraph())
}

// Stats returns node counts and the aggregate metrics view.
// GET /v0/management/graph/stats
func (h *Handler) Stats(c *gin.Context) {
	respond(c, h.facade.Stats())
}

// QueryByType returns all nodes of the kind named by the ?type= parameter.
// GET /v0/management/graph/nodes?type=provider
func (h *Handler) QueryByType(c *gin.Context) {
	respond(c, h.facade.QueryByType(c.Query("type")))
}

// CurrentSelection returns the currently resolved selection, if any.
// GET /v0/management/selection
func (h *Handler) CurrentSelection(c *gin.Context) {
	sel := h.watcher.Current()
	if sel == nil {
		c.JSON(http.StatusOK, gin.H{"selection": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selection": sel})
}

// WriteSelection persists a new selection. Payloads carrying a non-empty
// inline apiKey are rejected outright.
// PUT /v0/management/selection
func (h *Handler) WriteSelection(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if err := selection.WriteSelectionRaw(h.selPath, data); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, selection.ErrInlineCredential) {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": "write_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": h.selPath})
}

// History returns recent request outcomes and per-provider rollups.
// GET /v0/management/history
func (h *Handler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	recent, err := h.history.Recent(c.Request.Context(), 50)
	if err != nil {
		log.Errorf("Failed to read request history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history_unavailable"})
		return
	}
	rollup, err := h.history.Rollup(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to read history rollup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history_unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "recent": recent, "rollup": rollup})
}
