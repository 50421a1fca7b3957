// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"testing"

	"github.com/fnichol/artifetch/artifetcherr"
)

// TestManifestRoundTrip covers testable property 5: a single entry line
// round-trips through ParseManifest and FormatEntry.
func TestManifestRoundTrip(t *testing.T) {
	line := "linux-x86_64  tool_linux_amd64.tar.gz"
	manifest, err := ParseManifest("tool", []byte(line+"\n"))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if len(manifest.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(manifest.Entries))
	}
	if got := FormatEntry(manifest.Entries[0]); got != "linux-x86_64  tool_linux_amd64.tar.gz" {
		t.Errorf("FormatEntry round-trip mismatch: %q", got)
	}
}

func TestManifestOneFieldRejected(t *testing.T) {
	if _, err := ParseManifest("tool", []byte("linux-x86_64\n")); !artifetcherr.Is(err, artifetcherr.ManifestParse) {
		t.Fatalf("expected ManifestParse error, got %v", err)
	}
}

func TestManifestThreeFieldsRejected(t *testing.T) {
	if _, err := ParseManifest("tool", []byte("linux-x86_64 a b\n")); !artifetcherr.Is(err, artifetcherr.ManifestParse) {
		t.Fatalf("expected ManifestParse error, got %v", err)
	}
}

func TestManifestEmptyInput(t *testing.T) {
	manifest, err := ParseManifest("tool", []byte(""))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if len(manifest.Entries) != 0 {
		t.Errorf("expected no entries, got %+v", manifest.Entries)
	}
}

func TestManifestBlankLinesSkipped(t *testing.T) {
	manifest, err := ParseManifest("tool", []byte("\n\nlinux  a.zip\n\n"))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if len(manifest.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %+v", manifest.Entries)
	}
}

func TestIsManifestAssetAndLogicalName(t *testing.T) {
	if !IsManifestAsset("names.manifest.txt") {
		t.Error("expected names.manifest.txt to be recognized as a manifest")
	}
	if IsManifestAsset("names_0.11.0_darwin_x86_64.zip") {
		t.Error("expected a regular asset to not be recognized as a manifest")
	}
	if got := LogicalName("names.manifest.txt"); got != "names" {
		t.Errorf("expected logical name 'names', got %q", got)
	}
}
