// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"iter"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fnichol/artifetch/artifetcherr"
	"github.com/fnichol/artifetch/internal/syncx"
)

// Store is the concurrency-safe container behind the whole catalog: a
// two-level map (domain -> owner/name -> atomic cell) whose leaf cells
// each hold a pointer to an immutable Repo. Readers dereference a cell
// once to get a coherent snapshot; ReplaceRepo computes the next Repo from
// the current snapshot and installs it with a single atomic pointer swap,
// which never wraps upstream I/O. A single global lock is deliberately
// avoided: request-scoped reads must never block behind the network calls
// of an unrelated repo's updater.
type Store struct {
	providers syncx.Map[string, *providerEntry]
}

type providerEntry struct {
	provider Provider
	repos    syncx.Map[string, *atomic.Pointer[Repo]]
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// AddProvider registers p and seeds the store with an empty Repo (no
// releases, no etags) for each of p's configured repos, polled on
// pollInterval. Called once per provider at startup, before any updater for
// that provider's repos is spawned.
func (s *Store) AddProvider(p Provider, pollInterval time.Duration) {
	entry := &providerEntry{provider: p}
	for _, ref := range p.GitHub.Repos {
		repo := NewRepo(ref.Owner, ref.Name, pollInterval)
		cell := &atomic.Pointer[Repo]{}
		cell.Store(&repo)
		entry.repos.Store(repoKey(ref.Owner, ref.Name), cell)
	}
	s.providers.Store(p.Domain, entry)
}

// Providers returns a snapshot sequence over registered providers.
// Iteration order is unspecified.
func (s *Store) Providers() iter.Seq[Provider] {
	return func(yield func(Provider) bool) {
		for entry := range s.providers.Values() {
			if !yield(entry.provider) {
				return
			}
		}
	}
}

// Provider returns the Provider registered at domain, or false if none.
func (s *Store) Provider(domain string) (Provider, bool) {
	entry, ok := s.providers.Load(domain)
	if !ok {
		return Provider{}, false
	}
	return entry.provider, true
}

// Repos returns a snapshot sequence over domain's repos, or false if
// domain is not registered. Each element is a coherent Repo snapshot
// (Invariant 5): it reflects exactly one ReplaceRepo publication, never a
// mixture of pre- and post-update fields.
func (s *Store) Repos(domain string) (iter.Seq[Repo], bool) {
	entry, ok := s.providers.Load(domain)
	if !ok {
		return nil, false
	}
	return func(yield func(Repo) bool) {
		for cell := range entry.repos.Values() {
			if !yield(*cell.Load()) {
				return
			}
		}
	}, true
}

// Repo returns a coherent snapshot of (domain, owner, name), or false if
// not found.
func (s *Store) Repo(domain, owner, name string) (Repo, bool) {
	entry, ok := s.providers.Load(domain)
	if !ok {
		return Repo{}, false
	}
	cell, ok := entry.repos.Load(repoKey(owner, name))
	if !ok {
		return Repo{}, false
	}
	return *cell.Load(), true
}

// ReplaceRepo atomically publishes mutate(current snapshot) as the new
// state of (domain, owner, name). Either no reader observes the new value,
// or every subsequent read of that repo does — there is no window in
// which a reader can see a partial update. Returns a RepoNotFound error if
// the repo is not registered.
func (s *Store) ReplaceRepo(domain, owner, name string, mutate func(Repo) Repo) error {
	entry, ok := s.providers.Load(domain)
	if !ok {
		return artifetcherr.New(artifetcherr.RepoNotFound, "provider "+domain+" not found")
	}
	cell, ok := entry.repos.Load(repoKey(owner, name))
	if !ok {
		return artifetcherr.New(artifetcherr.RepoNotFound, "repo "+owner+"/"+name+" not found in "+domain)
	}
	current := *cell.Load()
	next := mutate(current)
	cell.Store(&next)
	return nil
}

// repoKey is case-insensitive: it lower-cases both parts so a lookup
// composed from request-path segments of any case lands on the Repo
// seeded under NewRepo's (also lower-cased) Owner/Name.
func repoKey(owner, name string) string {
	return strings.ToLower(owner) + "/" + strings.ToLower(name)
}
