// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"net/url"
	"testing"

	"github.com/fnichol/artifetch/artifetcherr"
	"github.com/google/go-cmp/cmp"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

// TestTransformColdStart covers scenario S1: one release, one manifest,
// one target.
func TestTransformColdStart(t *testing.T) {
	darwinURL := mustURL(t, "https://example.com/darwin.zip")
	raw := []RawRelease{
		{
			ID:  1,
			Tag: "v0.11.0",
			Assets: []RawAsset{
				{ID: 10, Name: "names.manifest.txt"},
				{ID: 11, Name: "names_0.11.0_darwin_x86_64.zip", DownloadURI: darwinURL},
			},
		},
	}
	manifests := map[uint64][]ParsedManifest{
		1: {{
			LogicalName: "names",
			Entries: []ManifestEntry{
				{TargetName: "darwin-x86_64", AssetName: "names_0.11.0_darwin_x86_64.zip"},
			},
		}},
	}

	got, failures := Transform(raw, manifests)
	if len(failures) != 0 {
		t.Fatalf("Transform: unexpected failures: %+v", failures)
	}
	want := []Release{
		{ID: 1, Tag: "v0.11.0"}.WithTargets([]Target{
			{Name: "darwin-x86_64"}.WithAssets([]Asset{
				{Name: "names", DownloadURI: darwinURL},
			}),
		}),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
	}
}

// TestTransformDraftAndPrereleaseExcluded covers invariant 4 and scenario
// S5: any release with Draft or Prerelease set is never emitted.
func TestTransformDraftAndPrereleaseExcluded(t *testing.T) {
	raw := []RawRelease{
		{ID: 1, Tag: "v1-draft", Draft: true},
		{ID: 2, Tag: "v2-pre", Prerelease: true},
		{ID: 3, Tag: "v3"},
	}
	got, failures := Transform(raw, nil)
	if len(failures) != 0 {
		t.Fatalf("Transform: unexpected failures: %+v", failures)
	}
	if len(got) != 1 || got[0].Tag != "v3" {
		t.Fatalf("expected only v3 to survive, got %+v", got)
	}
}

// TestTransformMissingAssetFails covers scenario S6: a manifest entry
// referencing an asset absent from the release's raw asset list fails
// that release's transformation, without poisoning others — the failure
// is reported via the failures slice and the release is simply absent
// from releases.
func TestTransformMissingAssetFails(t *testing.T) {
	raw := []RawRelease{
		{ID: 1, Tag: "v1", Assets: []RawAsset{{Name: "tool.manifest.txt"}}},
		{ID: 2, Tag: "v2"},
	}
	manifests := map[uint64][]ParsedManifest{
		1: {{LogicalName: "tool", Entries: []ManifestEntry{
			{TargetName: "linux-x86_64", AssetName: "missing.zip"},
		}}},
	}
	releases, failures := Transform(raw, manifests)
	if len(failures) != 1 || failures[0].Tag != "v1" {
		t.Fatalf("expected one failure for v1, got %+v", failures)
	}
	if !artifetcherr.Is(failures[0].Err, artifetcherr.MissingAsset) {
		t.Errorf("expected MissingAsset error, got %v", failures[0].Err)
	}
	if len(releases) != 1 || releases[0].Tag != "v2" {
		t.Fatalf("expected v2 to still be installed, got %+v", releases)
	}
}

// TestTransformMissingDownloadURIFails covers invariant 4: a manifest entry
// that resolves to a real asset whose upstream download URI is absent
// (e.g. GitHub's browser_download_url came back empty) must not install an
// Asset with a nil DownloadURI — it fails that release's transformation the
// same way a missing asset reference does, leaving other releases intact.
func TestTransformMissingDownloadURIFails(t *testing.T) {
	raw := []RawRelease{
		{ID: 1, Tag: "v1", Assets: []RawAsset{
			{Name: "tool.manifest.txt"},
			{Name: "tool_linux_x86_64.zip"}, // no DownloadURI
		}},
		{ID: 2, Tag: "v2"},
	}
	manifests := map[uint64][]ParsedManifest{
		1: {{LogicalName: "tool", Entries: []ManifestEntry{
			{TargetName: "linux-x86_64", AssetName: "tool_linux_x86_64.zip"},
		}}},
	}
	releases, failures := Transform(raw, manifests)
	if len(failures) != 1 || failures[0].Tag != "v1" {
		t.Fatalf("expected one failure for v1, got %+v", failures)
	}
	if !artifetcherr.Is(failures[0].Err, artifetcherr.MissingAsset) {
		t.Errorf("expected MissingAsset error, got %v", failures[0].Err)
	}
	if len(releases) != 1 || releases[0].Tag != "v2" {
		t.Fatalf("expected v2 to still be installed, got %+v", releases)
	}
}

// TestTransformLastManifestWins covers the documented last-writer-wins
// tie-break for colliding (target, logical name) pairs.
func TestTransformLastManifestWins(t *testing.T) {
	first := mustURL(t, "https://example.com/first.zip")
	second := mustURL(t, "https://example.com/second.zip")
	raw := []RawRelease{
		{
			ID:  1,
			Tag: "v1",
			Assets: []RawAsset{
				{Name: "first.zip", DownloadURI: first},
				{Name: "second.zip", DownloadURI: second},
			},
		},
	}
	manifests := map[uint64][]ParsedManifest{
		1: {
			{LogicalName: "tool", Entries: []ManifestEntry{{TargetName: "linux-x86_64", AssetName: "first.zip"}}},
			{LogicalName: "tool", Entries: []ManifestEntry{{TargetName: "linux-x86_64", AssetName: "second.zip"}}},
		},
	}
	got, failures := Transform(raw, manifests)
	if len(failures) != 0 {
		t.Fatalf("Transform: unexpected failures: %+v", failures)
	}
	asset := got[0].Targets["linux-x86_64"].Assets["tool"]
	if asset.DownloadURI.String() != second.String() {
		t.Errorf("expected last manifest to win with %s, got %s", second, asset.DownloadURI)
	}
}

func TestTransformEmptyInput(t *testing.T) {
	got, failures := Transform(nil, nil)
	if len(got) != 0 {
		t.Errorf("expected empty release list, got %+v", got)
	}
	if len(failures) != 0 {
		t.Errorf("expected no failures, got %+v", failures)
	}
}
