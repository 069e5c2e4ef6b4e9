// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package secret resolves provider credentials from the process environment.
// Credential values are never written to disk or included in any serialized
// node projection; only the environment variable *names* travel with the tree.
package secret

import (
	"os"
	"strings"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not present.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// legacyAliases maps a canonical credential variable to the historical
// variable names some installations still export for the same provider.
// The canonical name always wins when both are set.
var legacyAliases = map[string][]string{
	"OPENAI_API_KEY":     {"OPENAI_KEY"},
	"ANTHROPIC_API_KEY":  {"CLAUDE_API_KEY"},
	"GEMINI_API_KEY":     {"GOOGLE_API_KEY", "GOOGLE_GENERATIVE_AI_API_KEY"},
	"GROQ_API_KEY":       {},
	"MISTRAL_API_KEY":    {"MISTRAL_KEY"},
	"OPENROUTER_API_KEY": {"OPEN_ROUTER_API_KEY"},
}

// CanonicalEnvVar derives the conventional credential variable name for a
// provider identifier, e.g. "openai" -> "OPENAI_API_KEY".
func CanonicalEnvVar(providerID string) string {
	id := strings.ToUpper(strings.TrimSpace(providerID))
	id = strings.ReplaceAll(id, "-", "_")
	if id == "" {
		return ""
	}
	return id + "_API_KEY"
}

// Resolve looks up a credential by its primary environment variable name,
// falling back to the documented legacy aliases for that variable.
// It returns the credential value and whether one was found.
func Resolve(envVar string) (string, bool) {
	envVar = strings.TrimSpace(envVar)
	if envVar == "" {
		return "", false
	}
	if value, ok := os.LookupEnv(envVar); ok && value != "" {
		return value, true
	}
	for _, alias := range legacyAliases[envVar] {
		if value, ok := os.LookupEnv(alias); ok && value != "" {
			return value, true
		}
	}
	return "", false
}

// Aliases returns the legacy alias names documented for the given variable.
// The returned slice must not be mutated.
func Aliases(envVar string) []string {
	return legacyAliases[envVar]
}
