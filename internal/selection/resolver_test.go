// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package selection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/traylinx/switchAIRouter/internal/registry"
	"github.com/traylinx/switchAIRouter/internal/tree"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestResolverPrecedence(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	resolver := NewResolverWithDirs([]string{first, second}, nil)

	t.Run("absent", func(t *testing.T) {
		res := resolver.Resolve()
		if res.Outcome != OutcomeAbsent {
			t.Errorf("Expected OutcomeAbsent, got %v", res.Outcome)
		}
	})

	t.Run("later directory found", func(t *testing.T) {
		writeFile(t, second, "current-model.json", `{"provider": "groq", "modelName": "llama-3.3-70b-versatile"}`)
		res := resolver.Resolve()
		if res.Outcome != OutcomeFound || res.Selection.Provider != "groq" {
			t.Fatalf("Expected the second directory's selection, got %+v", res)
		}
	})

	t.Run("earlier directory wins", func(t *testing.T) {
		writeFile(t, first, "current-model.json", `{"provider": "openai", "modelName": "gpt-5.2"}`)
		res := resolver.Resolve()
		if res.Outcome != OutcomeFound || res.Selection.Provider != "openai" {
			t.Fatalf("Expected the first directory's selection, got %+v", res)
		}
	})

	t.Run("filename precedence within a directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "selected-model.json", `{"provider": "mistral", "modelName": "mistral-large-latest"}`)
		writeFile(t, dir, "current-model.json", `{"provider": "openai", "modelName": "gpt-5.2"}`)
		res := NewResolverWithDirs([]string{dir}, nil).Resolve()
		if res.Outcome != OutcomeFound || res.Selection.Provider != "openai" {
			t.Fatalf("Expected current-model.json to win, got %+v", res)
		}
	})
}

func TestResolverUnusableDoesNotFallThrough(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	// The first candidate exists but is unusable; the second holds a valid
	// selection that must NOT be consulted.
	badPath := writeFile(t, first, "current-model.json", `{"unrelated": true}`)
	writeFile(t, second, "current-model.json", `{"provider": "openai", "modelName": "gpt-5.2"}`)

	res := NewResolverWithDirs([]string{first, second}, nil).Resolve()
	if res.Outcome != OutcomeUnusable {
		t.Fatalf("Expected OutcomeUnusable, got %v", res.Outcome)
	}
	if res.Path != badPath {
		t.Errorf("Expected the unusable path to be reported, got %q", res.Path)
	}
	if res.Selection != nil {
		t.Error("Expected no selection for an unusable file")
	}
}

func TestResolveWithFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-a")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GOOGLE_GENERATIVE_AI_API_KEY", "")
	t.Setenv("MISTRAL_API_KEY", "")
	t.Setenv("MISTRAL_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPEN_ROUTER_API_KEY", "")
	t.Setenv("OPENAI_KEY", "")

	root := tree.NewProviderTree(tree.WithRegistry(registry.NewModelRegistry()))

	t.Run("persisted selection wins", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "current-model.json", `{"provider": "mistral", "modelName": "mistral-large-latest"}`)
		sel := NewResolverWithDirs([]string{dir}, root).ResolveWithFallback()
		if sel == nil || sel.Provider != "mistral" {
			t.Fatalf("Expected the persisted selection, got %+v", sel)
		}
	})

	t.Run("falls back to best ranked provider", func(t *testing.T) {
		openai := root.Provider("openai")
		openai.Models().AddModel(tree.NewModelNode("openai-model-gpt-5.2", "gpt-5.2", 272_000, true, true))
		openai.Models().AddModel(tree.NewModelNode("openai-model-gpt-5.2-mini", "gpt-5.2-mini", 272_000, true, true))
		openai.Models().Select("gpt-5.2-mini")

		sel := NewResolverWithDirs([]string{t.TempDir()}, root).ResolveWithFallback()
		if sel == nil {
			t.Fatal("Expected a fallback selection")
		}
		if sel.Provider != "openai" || sel.ModelName != "gpt-5.2-mini" {
			t.Errorf("Expected the selected model of the best provider, got %+v", sel)
		}
	})

	t.Run("first catalog model without a selection", func(t *testing.T) {
		root.Provider("openai").Models().Select("")
		sel := NewResolverWithDirs([]string{t.TempDir()}, root).ResolveWithFallback()
		if sel == nil || sel.ModelName != "gpt-5.2" {
			t.Fatalf("Expected the first catalog model, got %+v", sel)
		}
	})

	t.Run("nothing routable", func(t *testing.T) {
		bare := tree.NewProviderTree(tree.WithRegistry(registry.NewModelRegistry()))
		t.Setenv("OPENAI_API_KEY", "")
		if sel := NewResolverWithDirs([]string{t.TempDir()}, bare).ResolveWithFallback(); sel != nil {
			t.Errorf("Expected nil with no credentialed providers, got %+v", sel)
		}
	})
}
