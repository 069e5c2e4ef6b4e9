// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package selection

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherNotifiesOnChange(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(NewResolverWithDirs([]string{dir}, nil))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	notifications := make(chan *Selection, 10)
	w.Subscribe(func(sel *Selection) { notifications <- sel })

	writeFile(t, dir, "current-model.json", `{"provider": "openai", "modelName": "gpt-5.2"}`)

	select {
	case sel := <-notifications:
		if sel == nil || sel.Provider != "openai" {
			t.Errorf("Expected the new selection, got %+v", sel)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Expected a notification after the file appeared")
	}

	if cur := w.Current(); cur == nil || cur.Provider != "openai" {
		t.Errorf("Expected Current to reflect the change, got %+v", cur)
	}
}

func TestWatcherDeduplicatesEqualContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current-model.json")
	if err := os.WriteFile(path, []byte(`{"provider": "openai", "modelName": "gpt-5.2"}`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	w := NewWatcher(NewResolverWithDirs([]string{dir}, nil))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	notifications := make(chan *Selection, 10)
	w.Subscribe(func(sel *Selection) { notifications <- sel })

	// Rewriting byte-different but semantically equal content must not
	// notify: the deep compare dedupes it.
	if err := os.WriteFile(path, []byte(`{"modelName": "gpt-5.2", "provider": "openai"}`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case sel := <-notifications:
		t.Errorf("Expected no notification for an unchanged selection, got %+v", sel)
	case <-time.After(700 * time.Millisecond):
	}

	// A real change still notifies.
	if err := os.WriteFile(path, []byte(`{"provider": "groq", "modelName": "llama-3.3-70b-versatile"}`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	select {
	case sel := <-notifications:
		if sel == nil || sel.Provider != "groq" {
			t.Errorf("Expected the changed selection, got %+v", sel)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Expected a notification for the real change")
	}
}

func TestWatcherNotifiesNilOnRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current-model.json")
	if err := os.WriteFile(path, []byte(`{"provider": "openai", "modelName": "gpt-5.2"}`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	w := NewWatcher(NewResolverWithDirs([]string{dir}, nil))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	notifications := make(chan *Selection, 10)
	w.Subscribe(func(sel *Selection) { notifications <- sel })

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	select {
	case sel := <-notifications:
		if sel != nil {
			t.Errorf("Expected a nil selection after removal, got %+v", sel)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Expected a notification after the file was removed")
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(NewResolverWithDirs([]string{dir}, nil))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	notifications := make(chan *Selection, 10)
	token := w.Subscribe(func(sel *Selection) { notifications <- sel })
	w.Unsubscribe(token)

	writeFile(t, dir, "current-model.json", `{"provider": "openai", "modelName": "gpt-5.2"}`)

	select {
	case <-notifications:
		t.Error("Expected no notification after unsubscribing")
	case <-time.After(700 * time.Millisecond):
	}
}

func TestWatcherStartRequiresWatchableDirs(t *testing.T) {
	w := NewWatcher(NewResolverWithDirs([]string{filepath.Join(t.TempDir(), "does-not-exist")}, nil))
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("Expected Start to fail with no watchable directories")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(NewResolverWithDirs([]string{dir}, nil))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	w.Stop()
	w.Stop()
}

func TestWatcherCurrentWithoutStart(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "current-model.json", `{"provider": "openai", "modelName": "gpt-5.2"}`)
	w := NewWatcher(NewResolverWithDirs([]string{dir}, nil))

	if cur := w.Current(); cur == nil || cur.Provider != "openai" {
		t.Errorf("Expected on-demand resolution before Start, got %+v", cur)
	}
}
