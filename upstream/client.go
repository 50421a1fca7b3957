// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package upstream wraps the upstream GitHub / GitHub Enterprise REST
// surface with entity-tag plumbing and classified errors, so repo updaters
// never have to parse raw HTTP themselves.
package upstream

import (
	"context"

	"github.com/fnichol/artifetch/catalog"
)

// Status classifies the outcome of an upstream fetch.
type Status int

const (
	// NotModified: the upstream returned 304 against our prior etag. No
	// body was decoded.
	NotModified Status = iota
	// OK: the upstream returned a 2xx body, decoded successfully.
	OK
	// NotFound: the upstream returned 404. Not an error — a repo can
	// legally have zero releases yet exist.
	NotFound
	// Failed: transport, deserialization, or a non-2xx/304/404 API error.
	// See Err for the classified cause.
	Failed
)

// ReleasesResult is the outcome of ListReleases.
type ReleasesResult struct {
	Status   Status
	ETag     string
	Releases []catalog.RawRelease
	Err      error // set iff Status == Failed
}

// LatestResult is the outcome of LatestRelease.
type LatestResult struct {
	Status  Status
	ETag    string
	Release catalog.RawRelease
	Err     error // set iff Status == Failed
}

// Client is the typed upstream surface a repo updater depends on. One
// Client instance is shared across all updaters for a given provider
// domain so its underlying connection pool is reused; implementations
// must be safe for concurrent use.
type Client interface {
	// ListReleases fetches the full "list releases" page (the first page
	// only — see the pagination open question), conditional on priorETag.
	ListReleases(ctx context.Context, owner, name, priorETag string) ReleasesResult
	// LatestRelease fetches the single release GitHub considers "latest"
	// for owner/name, conditional on priorETag.
	LatestRelease(ctx context.Context, owner, name, priorETag string) LatestResult
	// FetchManifest downloads and parses the manifest asset identified by
	// assetID, whose upstream filename was assetName.
	FetchManifest(ctx context.Context, owner, name string, assetID uint64, assetName string) (catalog.ParsedManifest, error)
}
