// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the provider -> repo -> release -> target -> asset
// tree that the HTTP layer answers from, and the store that lets many
// readers observe a consistent snapshot of a repo while its updater swaps
// in the next version.
package catalog

import (
	"net/url"
	"strings"
	"time"
)

// Asset is a single downloadable artifact within a Target. Its Name is the
// catalog-facing logical name, independent of the filename the upstream
// provider stores it under.
type Asset struct {
	Name        string
	DownloadURI *url.URL
}

// Target groups the Assets built for one platform (e.g. "linux-x86_64")
// within a Release.
type Target struct {
	Name   string
	Assets map[string]Asset
}

// WithAssets returns a copy of t with Assets replaced by a freshly built
// by-name index over assets. Targets are never mutated in place.
func (t Target) WithAssets(assets []Asset) Target {
	byName := make(map[string]Asset, len(assets))
	for _, a := range assets {
		byName[a.Name] = a
	}
	t.Assets = byName
	return t
}

// AssetNames returns the Target's asset names in unspecified order.
func (t Target) AssetNames() []string {
	names := make([]string, 0, len(t.Assets))
	for name := range t.Assets {
		names = append(names, name)
	}
	return names
}

// Release is one upstream release, identified by its upstream-assigned ID.
// Tag is the user-facing version string (e.g. "v0.11.0").
type Release struct {
	ID      uint64
	Tag     string
	Targets map[string]Target
}

// WithTargets returns a copy of r with Targets replaced by a freshly built
// by-name index.
func (r Release) WithTargets(targets []Target) Release {
	byName := make(map[string]Target, len(targets))
	for _, t := range targets {
		byName[t.Name] = t
	}
	r.Targets = byName
	return r
}

// TargetNames returns the Release's target names in unspecified order.
func (r Release) TargetNames() []string {
	names := make([]string, 0, len(r.Targets))
	for name := range r.Targets {
		names = append(names, name)
	}
	return names
}

// Repo is the mutable unit of the catalog: everything known about one
// upstream (owner, name) pair under a single Provider. A Repo value is
// immutable once published by the store — updates replace the whole
// value, they never mutate fields of a value already in circulation.
type Repo struct {
	Owner, Name string

	Releases     map[string]Release // tag -> Release
	LatestTag    string             // "" means unset
	ReleasesETag string
	LatestETag   string

	PollInterval time.Duration
	LastUpdated  time.Time // zero means "never updated"
}

// NewRepo returns the empty Repo a freshly configured repo starts as:
// no releases, no etags, the given poll interval. Owner and Name are
// lower-cased to make lookups case-insensitive, mirroring GitHub's own
// owner/repo matching.
func NewRepo(owner, name string, pollInterval time.Duration) Repo {
	return Repo{
		Owner:        strings.ToLower(owner),
		Name:         strings.ToLower(name),
		Releases:     map[string]Release{},
		PollInterval: pollInterval,
	}
}

// ReleaseTags returns the Repo's release tags in unspecified order.
func (r Repo) ReleaseTags() []string {
	tags := make([]string, 0, len(r.Releases))
	for tag := range r.Releases {
		tags = append(tags, tag)
	}
	return tags
}

// Latest returns the Release named by LatestTag, or false if LatestTag is
// unset or (transiently, see the updater's write discipline) not yet
// present among Releases.
func (r Repo) Latest() (Release, bool) {
	if r.LatestTag == "" {
		return Release{}, false
	}
	rel, ok := r.Releases[r.LatestTag]
	return rel, ok
}

// WithReleases returns a copy of r with Releases replaced wholesale by a
// freshly built tag index, and ReleasesETag advanced to etag. Used by the
// updater after a successful "list releases" fetch; never patches existing
// Release values in place.
func (r Repo) WithReleases(releases []Release, etag string) Repo {
	byTag := make(map[string]Release, len(releases))
	for _, rel := range releases {
		byTag[rel.Tag] = rel
	}
	r.Releases = byTag
	r.ReleasesETag = etag
	r.LastUpdated = now()
	return r
}

// WithLatest returns a copy of r with LatestTag and LatestETag advanced.
// It deliberately does not require tag to be present in r.Releases: the
// two sub-fetches of a pass write disjoint fields and may publish in
// either order (see Store.ReplaceRepo).
func (r Repo) WithLatest(tag, etag string) Repo {
	r.LatestTag = tag
	r.LatestETag = etag
	r.LastUpdated = now()
	return r
}

// now is a seam so tests can swap in a fixed clock if ever needed; the
// production path always calls time.Now.
var now = time.Now

// Provider is a tagged union over upstream hosting providers. GitHub is the
// only variant today; the shape (a Domain identity plus one field of
// provider-specific configuration per variant) admits adding variants by
// adding fields, without changing how the Store keys providers by Domain.
type Provider struct {
	Domain string
	GitHub GitHubConfig
}

// GitHubConfig holds the per-domain configuration for the GitHub variant.
type GitHubConfig struct {
	// OAuthToken authenticates requests to this domain's API.
	OAuthToken string
	// Repos is the configured (owner, name) pairs to mirror.
	Repos []RepoRef
}

// RepoRef names one configured repository to mirror.
type RepoRef struct {
	Owner, Name string
}

// APIRoot returns the GitHub REST API root for this provider's domain:
// https://api.github.com for github.com, https://{domain}/api/v3 for any
// GitHub Enterprise domain.
func (p Provider) APIRoot() string {
	if p.Domain == "github.com" {
		return "https://api.github.com"
	}
	return "https://" + p.Domain + "/api/v3"
}
