// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package constant defines provider name constants used throughout switchAIRouter.
// These constants identify the backends the routing engine can dispatch to,
// ensuring consistent naming across the application.
package constant

const (
	// OpenAI represents the OpenAI provider identifier.
	OpenAI = "openai"

	// Anthropic represents the Anthropic provider identifier.
	Anthropic = "anthropic"

	// Gemini represents the Google Gemini provider identifier.
	Gemini = "gemini"

	// Groq represents the Groq provider identifier.
	Groq = "groq"

	// Mistral represents the Mistral provider identifier.
	Mistral = "mistral"

	// OpenRouter represents the OpenRouter aggregation provider identifier.
	OpenRouter = "openrouter"

	// OpenCode represents the dynamically discovered local OpenCode provider.
	OpenCode = "opencode"
)

const (
	// DefaultQuotaRealm is the quota realm every statically registered
	// provider lives in. Additional realms can be created at runtime but
	// today a single realm holds all providers.
	DefaultQuotaRealm = "identity"

	// TreeStateVersion is the serialization version written by SaveToFile.
	TreeStateVersion = "2.0"

	// LegacyTreeStateVersion is the pre-realm serialization version still
	// accepted by LoadFromFile.
	LegacyTreeStateVersion = "1.0"
)

const (
	// DiscoveryPortEnv overrides the local discovery endpoint port.
	DiscoveryPortEnv = "SWITCHAI_ROUTER_DISCOVERY_PORT"

	// DiscoveryDisableEnv disables dynamic discovery entirely when set to "1".
	DiscoveryDisableEnv = "SWITCHAI_ROUTER_NO_DISCOVERY"

	// PanelChildEnv opts provider nodes into carrying the optional Panel child.
	PanelChildEnv = "SWITCHAI_ROUTER_PANEL"

	// DefaultDiscoveryPort is the well-known port of the local companion
	// process queried during dynamic discovery.
	DefaultDiscoveryPort = 4096
)
