// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package envsubst implements the $VAR / ${VAR} substitution algorithm used
// to resolve environment references in configuration values. It operates on
// one string at a time; the config package applies it to each string field
// after the document has been decoded.
package envsubst

import (
	"fmt"
	"strings"
)

// maxPasses bounds the re-scan loop against a pathological self-referential
// environment (e.g. FOO=$FOO) producing an unbounded number of passes; it is
// far above anything a real configuration document would need.
const maxPasses = 64

// Lookup resolves a variable name to its value, reporting whether it is set.
type Lookup func(name string) (string, bool)

// Substitute expands every $VAR and ${VAR} reference in s using lookup,
// re-scanning the result until a full pass makes no further substitution —
// a value substituted in from the environment is itself subject to
// substitution. Returns an error if a reference names an unset variable, or
// if a "${" is never closed, or if a braced name contains a character
// outside [A-Za-z0-9_].
func Substitute(s string, lookup Lookup) (string, error) {
	for pass := 0; pass < maxPasses; pass++ {
		next, changed, err := expandOnce(s, lookup)
		if err != nil {
			return "", err
		}
		if !changed {
			return next, nil
		}
		s = next
	}
	return "", fmt.Errorf("envsubst: exceeded %d substitution passes, possible self-referential variable", maxPasses)
}

func expandOnce(s string, lookup Lookup) (out string, changed bool, err error) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '$' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		if s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end == -1 {
				return "", false, fmt.Errorf("envsubst: unterminated \"${\" in %q", s)
			}
			name := s[i+2 : i+2+end]
			if !isValidName(name) {
				return "", false, fmt.Errorf("envsubst: invalid variable name %q", name)
			}
			val, ok := lookup(name)
			if !ok {
				return "", false, fmt.Errorf("envsubst: variable %q not set", name)
			}
			b.WriteString(val)
			changed = true
			i += 2 + end + 1
			continue
		}
		j := i + 1
		for j < len(s) && isNameByte(s[j]) {
			j++
		}
		if j == i+1 {
			// Bare "$" not followed by a name character: literal.
			b.WriteByte(s[i])
			i++
			continue
		}
		name := s[i+1 : j]
		val, ok := lookup(name)
		if !ok {
			return "", false, fmt.Errorf("envsubst: variable %q not set", name)
		}
		b.WriteString(val)
		changed = true
		i = j
	}
	return b.String(), changed, nil
}

func isValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9')
}
