// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package urlx adds a couple of small conveniences over net/url.
package urlx

import "net/url"

// MustParse calls url.Parse and panics on error. Intended for package-level
// var initialization of well-known, constant base URLs.
func MustParse(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return u
}

// JoinPath returns a copy of base with the given path segments appended,
// percent-escaping each segment with url.PathEscape before joining, so a
// "/" inside a segment stays part of that segment.
func JoinPath(base *url.URL, segments ...string) *url.URL {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return base.JoinPath(escaped...)
}
