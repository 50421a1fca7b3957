// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/fnichol/artifetch/artifetcherr"
	"github.com/fnichol/artifetch/catalog"
)

const manifestSuffix = ".manifest.txt"

// IsManifestAsset reports whether assetName names a manifest sidecar.
func IsManifestAsset(assetName string) bool {
	return strings.HasSuffix(assetName, manifestSuffix)
}

// LogicalName strips the manifest suffix from assetName, yielding the
// catalog Asset.Name every entry in that manifest will be published under.
func LogicalName(assetName string) string {
	return strings.TrimSuffix(assetName, manifestSuffix)
}

// ParseManifest parses a manifest body: one non-empty line per entry,
// exactly two whitespace-delimited fields ("target_name  asset_name").
// Blank lines are skipped. A line with one field or more than two fields
// fails the whole parse.
func ParseManifest(logicalName string, body []byte) (catalog.ParsedManifest, error) {
	var entries []catalog.ManifestEntry
	scanner := bufio.NewScanner(bytes.NewReader(body))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return catalog.ParsedManifest{}, artifetcherr.New(
				artifetcherr.ManifestParse,
				fmt.Sprintf("manifest line %d: expected exactly two fields, got %d (%q)", lineNo, len(fields), line),
			)
		}
		entries = append(entries, catalog.ManifestEntry{TargetName: fields[0], AssetName: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return catalog.ParsedManifest{}, artifetcherr.Wrap(artifetcherr.ManifestParse, err, "reading manifest body")
	}
	return catalog.ParsedManifest{LogicalName: logicalName, Entries: entries}, nil
}

// FormatEntry renders e in the canonical two-field manifest line format,
// the inverse of ParseManifest for a single entry.
func FormatEntry(e catalog.ManifestEntry) string {
	return e.TargetName + "  " + e.AssetName
}
