// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpapi exposes the catalog store as a read-only text/plain
// listing API, plus a redirecting asset download endpoint.
package httpapi

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/fnichol/artifetch/catalog"
)

// NewHandler builds the full route table over store. One handler is
// registered per route using Go 1.22's method+pattern ServeMux syntax and
// r.PathValue, generalizing the teacher's single-route http.HandleFunc
// registration (cmd/registry/main.go, cmd/api/main.go) to a path-parameter
// table.
func NewHandler(store *catalog.Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/providers.txt", handleProviders(store))
	mux.HandleFunc("GET /v1/providers/{provider}/repos.txt", handleRepos(store))
	mux.HandleFunc("GET /v1/providers/{provider}/repos/{owner}/{repo}/releases.txt", handleReleases(store))
	mux.HandleFunc("GET /v1/providers/{provider}/repos/{owner}/{repo}/releases/{version}/targets.txt", handleTargets(store))
	mux.HandleFunc("GET /v1/providers/{provider}/repos/{owner}/{repo}/releases/{version}/targets/{target}/assets.txt", handleAssetNames(store))
	mux.HandleFunc("GET /v1/providers/{provider}/repos/{owner}/{repo}/releases/{version}/targets/{target}/assets/{asset}", handleAssetRedirect(store))
	return mux
}

func handleProviders(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var domains []string
		for p := range store.Providers() {
			domains = append(domains, p.Domain)
		}
		writeLines(w, domains)
	}
}

func handleRepos(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repos, ok := store.Repos(r.PathValue("provider"))
		if !ok {
			notFound(w)
			return
		}
		var lines []string
		for repo := range repos {
			lines = append(lines, repo.Owner+"/"+repo.Name)
		}
		writeLines(w, lines)
	}
}

func handleReleases(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ok := lookupRepo(store, r)
		if !ok {
			notFound(w)
			return
		}
		writeLines(w, repo.ReleaseTags())
	}
}

func handleTargets(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ok := lookupRepo(store, r)
		if !ok {
			notFound(w)
			return
		}
		rel, ok := resolveRelease(repo, r.PathValue("version"))
		if !ok {
			notFound(w)
			return
		}
		writeLines(w, rel.TargetNames())
	}
}

func handleAssetNames(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := lookupTarget(store, r)
		if !ok {
			notFound(w)
			return
		}
		writeLines(w, target.AssetNames())
	}
}

func handleAssetRedirect(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := lookupTarget(store, r)
		if !ok {
			notFound(w)
			return
		}
		asset, ok := target.Assets[r.PathValue("asset")]
		if !ok {
			notFound(w)
			return
		}
		http.Redirect(w, r, asset.DownloadURI.String(), http.StatusFound)
	}
}

func lookupRepo(store *catalog.Store, r *http.Request) (catalog.Repo, bool) {
	return store.Repo(r.PathValue("provider"), r.PathValue("owner"), r.PathValue("repo"))
}

func lookupTarget(store *catalog.Store, r *http.Request) (catalog.Target, bool) {
	repo, ok := lookupRepo(store, r)
	if !ok {
		return catalog.Target{}, false
	}
	rel, ok := resolveRelease(repo, r.PathValue("version"))
	if !ok {
		return catalog.Target{}, false
	}
	target, ok := rel.Targets[r.PathValue("target")]
	return target, ok
}

// resolveRelease resolves the {version} path segment: the literal "latest"
// is resolved through Repo.Latest(), anything else is matched as an exact
// tag.
func resolveRelease(repo catalog.Repo, version string) (catalog.Release, bool) {
	if version == "latest" {
		return repo.Latest()
	}
	rel, ok := repo.Releases[version]
	return rel, ok
}

func notFound(w http.ResponseWriter) {
	http.Error(w, "not found", http.StatusNotFound)
}

// writeLines renders lines as a text/plain, newline-terminated body, one
// entity per line. An empty slice yields an empty 200 body (scenario S3),
// not a 404. Lines are sorted for response determinism; the spec leaves
// ordering unspecified (see the release-ordering open question), so
// alphabetical order is one valid choice among many, not a resolution of
// the "sort by created_at" question.
func writeLines(w http.ResponseWriter, lines []string) {
	sorted := append([]string(nil), lines...)
	sort.Strings(sorted)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, line := range sorted {
		fmt.Fprintln(w, line)
	}
}
