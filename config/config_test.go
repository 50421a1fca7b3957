// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"
	"testing"

	"github.com/fnichol/artifetch/artifetcherr"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	doc := `
registry:
  github.com:
    repos:
      - fnichol/names
`
	cfg, err := Load(strings.NewReader(doc), lookupFrom(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindAddr != defaultBindAddr {
		t.Errorf("expected default bind_addr, got %q", cfg.BindAddr)
	}
	providers, err := cfg.Providers()
	if err != nil {
		t.Fatalf("Providers: %v", err)
	}
	if len(providers) != 1 || providers[0].Domain != "github.com" {
		t.Fatalf("unexpected providers: %+v", providers)
	}
	if len(providers[0].GitHub.Repos) != 1 || providers[0].GitHub.Repos[0].Owner != "fnichol" {
		t.Fatalf("unexpected repos: %+v", providers[0].GitHub.Repos)
	}
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	doc := `
bind_addr: "$HOST:${PORT}"
registry:
  github.com:
    oauth_token: "$TOKEN"
    repos: []
`
	env := map[string]string{"HOST": "127.0.0.1", "PORT": "9000", "TOKEN": "tok-abc"}
	cfg, err := Load(strings.NewReader(doc), lookupFrom(env))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:9000" {
		t.Errorf("expected substituted bind_addr, got %q", cfg.BindAddr)
	}
	if cfg.Registry["github.com"].OAuthToken != "tok-abc" {
		t.Errorf("expected substituted oauth_token, got %q", cfg.Registry["github.com"].OAuthToken)
	}
}

func TestLoadUnknownFieldRejected(t *testing.T) {
	doc := `
bind_addr: "0.0.0.0:8000"
nonsense: true
`
	if _, err := Load(strings.NewReader(doc), lookupFrom(nil)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadBadRepoSeparator(t *testing.T) {
	doc := `
registry:
  github.com:
    repos:
      - fnichol-names
`
	_, err := Load(strings.NewReader(doc), lookupFrom(nil))
	if !artifetcherr.Is(err, artifetcherr.RepoConfig) {
		t.Fatalf("expected RepoConfig error, got %v", err)
	}
}

func TestLoadTooManySeparators(t *testing.T) {
	doc := `
registry:
  github.com:
    repos:
      - fnichol/names/extra
`
	_, err := Load(strings.NewReader(doc), lookupFrom(nil))
	if !artifetcherr.Is(err, artifetcherr.RepoConfig) {
		t.Fatalf("expected RepoConfig error, got %v", err)
	}
}

func TestLoadUnsupportedProvider(t *testing.T) {
	doc := `
registry:
  example.com:
    provider: gitlab
    repos: []
`
	_, err := Load(strings.NewReader(doc), lookupFrom(nil))
	if !artifetcherr.Is(err, artifetcherr.ProviderInit) {
		t.Fatalf("expected ProviderInit error, got %v", err)
	}
}

func TestLoadMissingEnvVarFails(t *testing.T) {
	doc := `bind_addr: "$UNSET_VAR"`
	if _, err := Load(strings.NewReader(doc), lookupFrom(nil)); !artifetcherr.Is(err, artifetcherr.ConfigLoad) {
		t.Fatalf("expected ConfigLoad error, got %v", err)
	}
}
