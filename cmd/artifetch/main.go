// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Command artifetch mirrors GitHub/GitHub Enterprise release metadata into
// an in-memory catalog and serves it as a text/plain HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fnichol/artifetch/catalog"
	"github.com/fnichol/artifetch/config"
	"github.com/fnichol/artifetch/httpapi"
	"github.com/fnichol/artifetch/internal/httpx"
	"github.com/fnichol/artifetch/updater"
	"github.com/fnichol/artifetch/upstream"
	"github.com/pkg/errors"
)

var (
	configPath     = flag.String("config", "", "path to the YAML configuration file")
	bindAddr       = flag.String("bind-addr", "", "override the configured bind_addr (host:port)")
	requestTimeout = flag.Duration("request-timeout", 30*time.Second, "timeout for each upstream HTTP request")
	pollInterval   = flag.Duration("poll-interval", 30*time.Second, "steady-state refresh cadence for every updater")
)

const userAgent = "artifetch/1"

func main() {
	flag.Parse()
	if *configPath == "" {
		log.Fatal("missing required -config flag")
	}

	f, err := os.Open(*configPath)
	if err != nil {
		log.Fatal(errors.Wrap(err, "opening configuration file"))
	}
	cfg, err := config.Load(f, os.LookupEnv)
	f.Close()
	if err != nil {
		log.Fatal(errors.Wrap(err, "loading configuration"))
	}
	if *bindAddr != "" {
		cfg.BindAddr = *bindAddr
	}

	providers, err := cfg.Providers()
	if err != nil {
		log.Fatal(errors.Wrap(err, "building providers from configuration"))
	}

	store := catalog.NewStore()
	httpClient := &httpx.WithUserAgent{
		BasicClient: &http.Client{Timeout: *requestTimeout},
		UserAgent:   userAgent,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, provider := range providers {
		store.AddProvider(provider, *pollInterval)
		client := upstream.NewGitHubClient(httpClient, provider)
		for _, ref := range provider.GitHub.Repos {
			updater.Spawn(ctx, store, client, updater.Key{Domain: provider.Domain, Owner: ref.Owner, Name: ref.Name})
		}
		log.Printf("artifetch: spawned %d updater(s) for %s", len(provider.GitHub.Repos), provider.Domain)
	}

	handler := httpapi.NewHandler(store)
	log.Printf("artifetch: listening on %s", cfg.BindAddr)
	if err := http.ListenAndServe(cfg.BindAddr, handler); err != nil {
		log.Fatal(errors.Wrap(err, "serving HTTP"))
	}
}
