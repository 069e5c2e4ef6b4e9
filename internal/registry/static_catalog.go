// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package registry

import "github.com/traylinx/switchAIRouter/internal/constant"

// staticCatalog is the built-in model catalog. Entries reflect the models
// each provider serves for coding-assistant workloads; dynamic discovery can
// add one more provider on top of these at runtime.
var staticCatalog = map[string][]*ModelInfo{
	constant.OpenAI: {
		{ID: "gpt-5.2", Vendor: "openai", Family: "gpt-5", MaxInputTokens: 400000, SupportsReasoning: true, SupportsVision: true},
		{ID: "gpt-5.2-codex", Vendor: "openai", Family: "gpt-5", MaxInputTokens: 400000, SupportsReasoning: true},
		{ID: "gpt-5-mini", Vendor: "openai", Family: "gpt-5", MaxInputTokens: 272000, SupportsReasoning: true, SupportsVision: true},
		{ID: "gpt-4.1", Vendor: "openai", Family: "gpt-4", MaxInputTokens: 1047576, SupportsVision: true},
	},
	constant.Anthropic: {
		{ID: "claude-sonnet-4-5", Vendor: "anthropic", Family: "claude-4", MaxInputTokens: 200000, SupportsReasoning: true, SupportsVision: true},
		{ID: "claude-opus-4-5", Vendor: "anthropic", Family: "claude-4", MaxInputTokens: 200000, SupportsReasoning: true, SupportsVision: true},
		{ID: "claude-haiku-4-5", Vendor: "anthropic", Family: "claude-4", MaxInputTokens: 200000, SupportsVision: true},
	},
	constant.Gemini: {
		{ID: "gemini-3-pro-preview", Vendor: "google", Family: "gemini-3", MaxInputTokens: 1048576, SupportsReasoning: true, SupportsVision: true},
		{ID: "gemini-2.5-pro", Vendor: "google", Family: "gemini-2.5", MaxInputTokens: 1048576, SupportsReasoning: true, SupportsVision: true},
		{ID: "gemini-2.5-flash", Vendor: "google", Family: "gemini-2.5", MaxInputTokens: 1048576, SupportsVision: true},
	},
	constant.Groq: {
		{ID: "llama-3.3-70b-versatile", Vendor: "meta", Family: "llama-3", MaxInputTokens: 131072},
		{ID: "qwen-2.5-coder-32b", Vendor: "alibaba", Family: "qwen-2.5", MaxInputTokens: 131072},
	},
	constant.Mistral: {
		{ID: "mistral-large-latest", Vendor: "mistral", Family: "mistral-large", MaxInputTokens: 131072},
		{ID: "codestral-latest", Vendor: "mistral", Family: "codestral", MaxInputTokens: 262144},
	},
	constant.OpenRouter: {
		{ID: "openrouter/auto", Vendor: "openrouter", Family: "auto", MaxInputTokens: 2000000},
	},
}
