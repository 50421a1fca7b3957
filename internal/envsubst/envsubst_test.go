// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package envsubst

import "testing"

func lookupFrom(env map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}

// TestSubstitute covers testable property 6 in full.
func TestSubstitute(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		env     map[string]string
		want    string
		wantErr bool
	}{
		{name: "bare var", input: "$X", env: map[string]string{"X": "ab"}, want: "ab"},
		{name: "braced var", input: "${X}", env: map[string]string{"X": "ab"}, want: "ab"},
		{name: "two bare vars", input: "$X$Y", env: map[string]string{"X": "a", "Y": "b"}, want: "ab"},
		{name: "unterminated brace", input: "${X", env: map[string]string{"X": "ab"}, wantErr: true},
		{name: "unknown var", input: "$Z", env: map[string]string{}, wantErr: true},
		{name: "re-scan nested value", input: "$X", env: map[string]string{"X": "$Y", "Y": "z"}, want: "z"},
		{name: "no references", input: "plain text", env: nil, want: "plain text"},
		{name: "literal trailing dollar", input: "a$", env: nil, want: "a$"},
		{name: "invalid brace char", input: "${X-Y}", env: map[string]string{}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Substitute(tc.input, lookupFrom(tc.env))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Substitute: %v", err)
			}
			if got != tc.want {
				t.Errorf("Substitute(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
