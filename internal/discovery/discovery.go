// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package discovery implements the best-effort dynamic model discovery
// probe. A local companion process may expose a catalog endpoint; when it is
// reachable within the probe timeout, its models are layered into the
// provider tree as one additional provider. Every failure mode (endpoint
// down, non-200 status, malformed JSON, empty catalog) collapses to "no
// dynamic provider available" and is never surfaced to the user.
package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/switchAIRouter/internal/constant"
	"github.com/traylinx/switchAIRouter/internal/registry"
)

// ProviderCatalog is the result of a successful discovery probe.
type ProviderCatalog struct {
	// ProviderID identifies the discovered provider.
	ProviderID string
	// BaseURL is the endpoint the discovered provider serves requests on.
	BaseURL string
	// Models lists the models the companion process reported.
	Models []*registry.ModelInfo
}

// catalogResponse mirrors the companion process wire format.
type catalogResponse struct {
	OK     bool `json:"ok"`
	Models []struct {
		ID             string `json:"id"`
		Vendor         string `json:"vendor"`
		Family         string `json:"family"`
		MaxInputTokens int    `json:"maxInputTokens"`
	} `json:"models"`
}

// Prober queries the local companion process for a dynamic provider catalog.
type Prober struct {
	client *http.Client
	port   int
}

// NewProber creates a prober with the given probe timeout. The port is taken
// from the SWITCHAI_ROUTER_DISCOVERY_PORT environment variable when set,
// otherwise from the supplied default.
func NewProber(port int, timeout time.Duration) *Prober {
	if port <= 0 {
		port = constant.DefaultDiscoveryPort
	}
	if env := os.Getenv(constant.DiscoveryPortEnv); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed > 0 && parsed < 65536 {
			port = parsed
		}
	}
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &Prober{
		client: &http.Client{Timeout: timeout},
		port:   port,
	}
}

// Enabled reports whether dynamic discovery is active. The opt-out
// environment variable wins over configuration.
func (p *Prober) Enabled() bool {
	return os.Getenv(constant.DiscoveryDisableEnv) != "1"
}

// Probe queries the companion endpoint and returns its catalog, or nil when
// no dynamic provider is available. A nil result is the expected outcome on
// any failure; callers must treat it as "provider absent", never as an error.
func (p *Prober) Probe(ctx context.Context) *ProviderCatalog {
	if !p.Enabled() {
		log.Debug("Dynamic discovery disabled by environment")
		return nil
	}

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", p.port)
	catalog, err := p.fetch(ctx, baseURL)
	if err != nil {
		log.Debugf("Dynamic discovery unavailable: %v", err)
		return nil
	}
	if catalog == nil || len(catalog.Models) == 0 {
		log.Debug("Dynamic discovery returned no models")
		return nil
	}

	log.Debugf("Discovered %d models for provider %s", len(catalog.Models), catalog.ProviderID)
	return catalog
}

func (p *Prober) fetch(ctx context.Context, baseURL string) (*ProviderCatalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "switchAIRouter/1.0 (internal-discovery)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed catalogResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("companion process reported not ok")
	}

	models := make([]*registry.ModelInfo, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		if m.ID == "" {
			continue
		}
		models = append(models, &registry.ModelInfo{
			ID:             m.ID,
			Vendor:         m.Vendor,
			Family:         m.Family,
			MaxInputTokens: m.MaxInputTokens,
		})
	}

	return &ProviderCatalog{
		ProviderID: constant.OpenCode,
		BaseURL:    baseURL,
		Models:     models,
	}, nil
}
