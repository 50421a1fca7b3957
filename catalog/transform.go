// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"net/url"

	"github.com/fnichol/artifetch/artifetcherr"
)

// RawRelease is one release as the upstream provider's "list releases" or
// "latest release" response describes it, before transformation.
type RawRelease struct {
	ID         uint64
	Tag        string
	Draft      bool
	Prerelease bool
	Assets     []RawAsset
}

// RawAsset is one asset attached to a RawRelease, as the upstream provider
// names and links it (its filename, not its catalog logical name).
type RawAsset struct {
	ID          uint64
	Name        string
	DownloadURI *url.URL
}

// ManifestEntry is one parsed line of a manifest body: the target it
// belongs to, and the filename of the raw asset that realizes it for that
// target.
type ManifestEntry struct {
	TargetName string
	AssetName  string // matched against RawAsset.Name
}

// ParsedManifest is one release's manifest sidecar, already fetched and
// line-parsed. LogicalName is the manifest asset's own filename with the
// ".manifest.txt" suffix removed — it becomes the catalog Asset.Name for
// every entry the manifest lists.
type ParsedManifest struct {
	LogicalName string
	Entries     []ManifestEntry
}

// TransformFailure records one release that could not be transformed —
// its transformation is dropped, but every other release in the batch is
// still installed (scenario S6).
type TransformFailure struct {
	Tag string
	Err error
}

// Transform turns raw provider releases plus their sidecar manifests into
// catalog Releases. It is pure and deterministic: the only external state
// it consumes is its arguments.
//
// Draft and prerelease releases are dropped. For each surviving release,
// every manifest entry contributes one Asset (named by the manifest's
// LogicalName) to the named Target, with its download URI looked up by
// matching entry.AssetName against the release's raw asset list. A
// manifest entry naming an asset absent from that list, or naming an asset
// whose upstream download URI is absent, fails only that release's
// transformation (reported in failures) with a MissingAsset error; every
// other release in the batch is still returned. If two
// entries collide on the same (target, logical name) within a release,
// the later one wins — manifests are applied in the order given, last
// writer wins by design.
func Transform(raw []RawRelease, manifestsByRelease map[uint64][]ParsedManifest) (releases []Release, failures []TransformFailure) {
	for _, rr := range raw {
		if rr.Draft || rr.Prerelease {
			continue
		}
		rel, err := transformOne(rr, manifestsByRelease[rr.ID])
		if err != nil {
			failures = append(failures, TransformFailure{Tag: rr.Tag, Err: err})
			continue
		}
		releases = append(releases, rel)
	}
	return releases, failures
}

func transformOne(rr RawRelease, manifests []ParsedManifest) (Release, error) {
	assetsByName := make(map[string]RawAsset, len(rr.Assets))
	for _, a := range rr.Assets {
		assetsByName[a.Name] = a
	}

	targets := make(map[string]map[string]Asset) // target name -> asset name -> Asset
	for _, manifest := range manifests {
		for _, entry := range manifest.Entries {
			raw, ok := assetsByName[entry.AssetName]
			if !ok {
				return Release{}, missingAssetErr(rr.Tag, entry.AssetName)
			}
			if raw.DownloadURI == nil {
				return Release{}, noDownloadURIErr(rr.Tag, entry.AssetName)
			}
			if targets[entry.TargetName] == nil {
				targets[entry.TargetName] = make(map[string]Asset)
			}
			targets[entry.TargetName][manifest.LogicalName] = Asset{
				Name:        manifest.LogicalName,
				DownloadURI: raw.DownloadURI,
			}
		}
	}

	built := make([]Target, 0, len(targets))
	for name, assets := range targets {
		assetList := make([]Asset, 0, len(assets))
		for _, a := range assets {
			assetList = append(assetList, a)
		}
		built = append(built, Target{Name: name}.WithAssets(assetList))
	}

	return Release{ID: rr.ID, Tag: rr.Tag}.WithTargets(built), nil
}

func missingAssetErr(tag, assetName string) error {
	return artifetcherr.New(artifetcherr.MissingAsset, "release "+tag+": manifest references unknown asset "+assetName)
}

// noDownloadURIErr reports an asset the manifest resolved successfully but
// whose upstream download URI is absent (e.g. GitHub's browser_download_url
// came back empty). Invariant 4 requires every catalog Asset to carry a
// syntactically valid absolute download URI, so such a release fails
// transformation the same way a missing asset reference would, rather than
// installing an Asset with a nil DownloadURI.
func noDownloadURIErr(tag, assetName string) error {
	return artifetcherr.New(artifetcherr.MissingAsset, "release "+tag+": asset "+assetName+" has no download URI")
}
