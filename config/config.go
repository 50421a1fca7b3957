// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads and validates the YAML document that drives a
// artifetch process: the listen address and the registry of upstream
// providers and repos to mirror.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/fnichol/artifetch/artifetcherr"
	"github.com/fnichol/artifetch/catalog"
	"github.com/fnichol/artifetch/internal/envsubst"
	"gopkg.in/yaml.v3"
)

const defaultBindAddr = "0.0.0.0:8000"

// RegistryEntry configures one upstream provider domain.
type RegistryEntry struct {
	// Provider selects the upstream variant; "github" is the only
	// supported value today and is assumed when empty.
	Provider string `yaml:"provider"`
	// OAuthToken authenticates requests to this domain, itself subject to
	// $VAR/${VAR} substitution.
	OAuthToken string `yaml:"oauth_token"`
	// Repos lists "owner/name" strings to mirror under this domain.
	Repos []string `yaml:"repos"`
}

// Config is the top-level configuration document.
type Config struct {
	BindAddr string                   `yaml:"bind_addr"`
	Registry map[string]RegistryEntry `yaml:"registry"`
}

// Load reads a YAML configuration document from r, rejects unknown fields,
// substitutes $VAR/${VAR} references against lookup in every string leaf
// (bind_addr, each registry entry's provider and oauth_token, and each repo
// string; registry domain keys are not substituted) after
// decoding, and validates every configured repo entry. bind_addr defaults to
// "0.0.0.0:8000" when unset.
func Load(r io.Reader, lookup envsubst.Lookup) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, artifetcherr.Wrap(artifetcherr.ConfigLoad, err, "parsing configuration")
	}

	if err := cfg.substitute(lookup); err != nil {
		return Config{}, artifetcherr.Wrap(artifetcherr.ConfigLoad, err, "substituting environment variables")
	}
	if cfg.BindAddr == "" {
		cfg.BindAddr = defaultBindAddr
	}
	if _, err := cfg.Providers(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// substitute expands $VAR/${VAR} references in every string leaf of cfg,
// mirroring how each field is resolved independently rather than rewriting
// the document as a whole: a substituted value is free to contain
// YAML-significant characters without corrupting already-parsed structure.
func (c *Config) substitute(lookup envsubst.Lookup) error {
	var err error
	sub := func(s string) string {
		if err != nil {
			return s
		}
		var out string
		out, err = envsubst.Substitute(s, lookup)
		return out
	}

	c.BindAddr = sub(c.BindAddr)
	for domain, entry := range c.Registry {
		entry.Provider = sub(entry.Provider)
		entry.OAuthToken = sub(entry.OAuthToken)
		for i, repo := range entry.Repos {
			entry.Repos[i] = sub(repo)
		}
		c.Registry[domain] = entry
	}
	return err
}

// Providers converts the registry section into catalog Providers, failing
// with a RepoConfig error if any repo entry lacks exactly one "/" separator,
// or a ProviderInit error if an entry names an unsupported provider.
func (c Config) Providers() ([]catalog.Provider, error) {
	providers := make([]catalog.Provider, 0, len(c.Registry))
	for domain, entry := range c.Registry {
		provider := entry.Provider
		if provider == "" {
			provider = "github"
		}
		if provider != "github" {
			return nil, artifetcherr.New(artifetcherr.ProviderInit, fmt.Sprintf("registry %q: unsupported provider %q", domain, provider))
		}

		refs := make([]catalog.RepoRef, 0, len(entry.Repos))
		for _, spec := range entry.Repos {
			ref, err := parseRepoRef(spec)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}

		providers = append(providers, catalog.Provider{
			Domain: domain,
			GitHub: catalog.GitHubConfig{OAuthToken: entry.OAuthToken, Repos: refs},
		})
	}
	return providers, nil
}

func parseRepoRef(spec string) (catalog.RepoRef, error) {
	if strings.Count(spec, "/") != 1 {
		return catalog.RepoRef{}, artifetcherr.New(artifetcherr.RepoConfig, fmt.Sprintf("repo %q must contain exactly one '/'", spec))
	}
	owner, name, _ := strings.Cut(spec, "/")
	if owner == "" || name == "" {
		return catalog.RepoRef{}, artifetcherr.New(artifetcherr.RepoConfig, fmt.Sprintf("repo %q must be \"owner/name\"", spec))
	}
	return catalog.RepoRef{Owner: owner, Name: name}, nil
}
