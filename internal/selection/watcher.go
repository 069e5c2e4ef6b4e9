// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package selection

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// debounceWindow is how long the watcher waits after a relevant filesystem
// event before re-resolving, letting an atomic rename settle first.
const debounceWindow = 250 * time.Millisecond

// Watcher observes the selection file candidate directories and notifies
// subscribers when the resolved selection changes. It is an explicit,
// constructible service owned by whichever component starts the process;
// there is no global watcher state.
//
// Resolution attempts are serialized on the watcher goroutine: a new event
// during the debounce window resets the timer rather than starting a second
// resolution.
type Watcher struct {
	resolver *Resolver

	mu          sync.Mutex
	subscribers map[string]func(*Selection)
	last        *Selection
	lastKnown   bool

	fsw     *fsnotify.Watcher
	stop    chan struct{}
	stopped sync.Once
}

// NewWatcher creates a watcher over the resolver's search directories.
func NewWatcher(resolver *Resolver) *Watcher {
	return &Watcher{
		resolver:    resolver,
		subscribers: make(map[string]func(*Selection)),
		stop:        make(chan struct{}),
	}
}

// Subscribe registers a callback invoked with the newly resolved selection
// (possibly nil) whenever it changes. It returns a token for Unsubscribe.
func (w *Watcher) Subscribe(fn func(*Selection)) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	token := uuid.New().String()
	w.subscribers[token] = fn
	return token
}

// Unsubscribe removes a previously registered callback.
func (w *Watcher) Unsubscribe(token string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.subscribers, token)
}

// Start installs filesystem watches on each candidate directory that exists
// and begins observing. The initial resolution seeds the change baseline
// without notifying.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("selection: failed to create watcher: %w", err)
	}
	w.fsw = fsw

	watched := 0
	for _, dir := range w.resolver.Dirs() {
		if err := fsw.Add(dir); err != nil {
			log.Debugf("Not watching %s: %v", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fsw.Close()
		return fmt.Errorf("selection: no watchable directories")
	}

	// Seed the baseline so only real changes notify.
	initial := w.resolver.Resolve()
	w.mu.Lock()
	w.last = initial.Selection
	w.lastKnown = true
	w.mu.Unlock()

	go w.loop()
	log.Debugf("Selection watcher started over %d directories", watched)
	return nil
}

// Stop tears down the filesystem watches. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopped.Do(func() {
		close(w.stop)
		if w.fsw != nil {
			w.fsw.Close()
		}
	})
}

func (w *Watcher) loop() {
	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceWindow)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(debounceWindow)
			}
			debounceC = debounce.C

		case <-debounceC:
			debounceC = nil
			w.reresolve()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warnf("Selection watcher error: %v", err)

		case <-w.stop:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	base := filepath.Base(path)
	for _, name := range CandidateFilenames {
		if base == name {
			return true
		}
	}
	return false
}

func (w *Watcher) reresolve() {
	res := w.resolver.Resolve()

	w.mu.Lock()
	changed := !w.lastKnown || !res.Selection.Equal(w.last)
	w.last = res.Selection
	w.lastKnown = true
	var callbacks []func(*Selection)
	if changed {
		for _, fn := range w.subscribers {
			callbacks = append(callbacks, fn)
		}
	}
	w.mu.Unlock()

	if !changed {
		return
	}
	log.Debugf("Selection changed (outcome=%d, path=%s)", res.Outcome, res.Path)
	for _, fn := range callbacks {
		fn(res.Selection)
	}
}

// Current returns the last resolved selection, resolving on demand when the
// watcher has not started yet.
func (w *Watcher) Current() *Selection {
	w.mu.Lock()
	if w.lastKnown {
		defer w.mu.Unlock()
		return w.last
	}
	w.mu.Unlock()

	res := w.resolver.Resolve()
	w.mu.Lock()
	w.last = res.Selection
	w.lastKnown = true
	w.mu.Unlock()
	return res.Selection
}
