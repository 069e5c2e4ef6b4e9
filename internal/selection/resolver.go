// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package selection

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/switchAIRouter/internal/tree"
)

// Outcome classifies one resolution attempt.
type Outcome int

const (
	// OutcomeFound means a persisted selection was found and is usable.
	OutcomeFound Outcome = iota
	// OutcomeUnusable means a selection file exists but normalized to nil.
	OutcomeUnusable
	// OutcomeAbsent means no selection file is present anywhere.
	OutcomeAbsent
)

// Resolution is the result of one resolution attempt.
type Resolution struct {
	Selection *Selection
	Path      string
	Outcome   Outcome
}

// Resolver locates and normalizes the persisted selection, and computes the
// fallback selection when none exists.
type Resolver struct {
	dirs      []string
	filenames []string
	fallback  *tree.ProviderTreeRoot
}

// NewResolver creates a resolver over the standard search directories. The
// tree, when non-nil, supplies the deterministic fallback chain used when no
// selection file exists.
func NewResolver(fallback *tree.ProviderTreeRoot) *Resolver {
	return &Resolver{
		dirs:      SearchDirs(),
		filenames: CandidateFilenames,
		fallback:  fallback,
	}
}

// NewResolverWithDirs creates a resolver over explicit directories, used by
// tests and by hosts with non-standard layouts.
func NewResolverWithDirs(dirs []string, fallback *tree.ProviderTreeRoot) *Resolver {
	return &Resolver{
		dirs:      dirs,
		filenames: CandidateFilenames,
		fallback:  fallback,
	}
}

// Dirs returns the directories the resolver scans.
func (r *Resolver) Dirs() []string {
	return append([]string(nil), r.dirs...)
}

// Resolve scans the candidate locations in order and returns the first
// usable persisted selection. Three outcomes are possible: a valid
// selection, a file that normalized to nil (unusable), or no file at all.
// The first existing, parsable file wins; its unusability does not fall
// through to later candidates.
func (r *Resolver) Resolve() Resolution {
	for _, dir := range r.dirs {
		for _, name := range r.filenames {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				if !os.IsNotExist(err) {
					log.Warnf("Failed to read selection file %s: %v", path, err)
				}
				continue
			}
			sel := NormalizeLoadedSelection(data)
			if sel == nil {
				log.Debugf("Selection file %s present but unusable", path)
				return Resolution{Path: path, Outcome: OutcomeUnusable}
			}
			return Resolution{Selection: sel, Path: path, Outcome: OutcomeFound}
		}
	}
	return Resolution{Outcome: OutcomeAbsent}
}

// ResolveWithFallback resolves the persisted selection and, when none is
// usable, falls back to the best-ranked active provider with a selected or
// first catalog model. Returns nil when nothing at all is routable.
func (r *Resolver) ResolveWithFallback() *Selection {
	res := r.Resolve()
	if res.Outcome == OutcomeFound {
		return res.Selection
	}
	return r.fallbackSelection()
}

func (r *Resolver) fallbackSelection() *Selection {
	if r.fallback == nil {
		return nil
	}
	for _, provider := range r.fallback.RankedProviders() {
		models := provider.Models()
		name := models.SelectedModel()
		if name == "" {
			if catalog := models.Models(); len(catalog) > 0 {
				name = catalog[0].Name()
			}
		}
		if name == "" {
			continue
		}
		return &Selection{
			Provider:  provider.ProviderID(),
			ModelName: name,
			BaseURL:   provider.BaseURL(),
		}
	}
	return nil
}
