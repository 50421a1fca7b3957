// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package updater runs one background goroutine per mirrored repo, polling
// its upstream provider on a jittered cadence and publishing what it finds
// into the catalog store.
package updater

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/fnichol/artifetch/catalog"
	"github.com/fnichol/artifetch/upstream"
	"golang.org/x/sync/errgroup"
)

// Key identifies the repo one updater goroutine is responsible for.
type Key struct {
	Domain string
	Owner  string
	Name   string
}

// splayBound is the fixed upper bound for the startup splay, independent of
// any configured PollInterval: spreading the initial refresh over a short
// fixed window is what prevents a stampede, and scaling it with the poll
// cadence would defeat that purpose for long intervals.
const splayBound = 30 * time.Second

// Spawn starts one background updater for key and returns immediately. The
// updater runs a populate pass at once, then refresh passes at the repo's
// configured PollInterval (read from the store at spawn time), with the
// first refresh additionally delayed by a splay drawn uniformly from
// [0, splayBound) so that updaters started together do not stampede the
// upstream. Shutdown is via ctx cancellation, observed at the two
// suspension points: timer fire and the joined sub-fetches.
func Spawn(ctx context.Context, store *catalog.Store, client upstream.Client, key Key) {
	go run(ctx, store, client, key)
}

func run(ctx context.Context, store *catalog.Store, client upstream.Client, key Key) {
	repo, ok := store.Repo(key.Domain, key.Owner, key.Name)
	if !ok {
		log.Printf("updater: %s/%s not registered under provider %s, not starting", key.Owner, key.Name, key.Domain)
		return
	}

	pass(ctx, store, client, key)
	if ctx.Err() != nil {
		return
	}

	timer := time.NewTimer(repo.PollInterval + splayDelay())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			pass(ctx, store, client, key)
			timer.Reset(repo.PollInterval)
		}
	}
}

// splayDelay returns a uniform random duration in [0, splayBound).
func splayDelay() time.Duration {
	return time.Duration(rand.Int63n(int64(splayBound)))
}

// pass runs one populate-or-refresh cycle: the releases and latest
// sub-fetches run concurrently, joined with errgroup before either result is
// applied. Neither sub-fetch returns an error of its own — failures are
// carried in their Result's Status/Err — so the errgroup here is purely a
// join barrier plus a shared, cancellable sub-context, not error
// aggregation.
func pass(ctx context.Context, store *catalog.Store, client upstream.Client, key Key) {
	current, ok := store.Repo(key.Domain, key.Owner, key.Name)
	if !ok {
		log.Printf("updater: %s/%s vanished from the store mid-run, skipping pass", key.Owner, key.Name)
		return
	}

	var releasesResult upstream.ReleasesResult
	var latestResult upstream.LatestResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		releasesResult = client.ListReleases(gctx, key.Owner, key.Name, current.ReleasesETag)
		return nil
	})
	g.Go(func() error {
		latestResult = client.LatestRelease(gctx, key.Owner, key.Name, current.LatestETag)
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		// Shutting down: apply neither result.
		return
	}

	applyReleases(ctx, store, client, key, releasesResult)
	applyLatest(store, key, latestResult)
}

// applyReleases handles one ReleasesResult per the effect table in spec
// section 4.5. On a transform partial failure it still installs every
// release that did transform, but withholds the etag advance so the next
// poll retries the failed one (scenario S6).
func applyReleases(ctx context.Context, store *catalog.Store, client upstream.Client, key Key, result upstream.ReleasesResult) {
	switch result.Status {
	case upstream.NotModified:
		log.Printf("updater: %s/%s releases not modified", key.Owner, key.Name)
		return
	case upstream.NotFound:
		log.Printf("updater: %s/%s releases endpoint returned 404, leaving state unchanged", key.Owner, key.Name)
		return
	case upstream.Failed:
		log.Printf("updater: %s/%s list releases failed: %v", key.Owner, key.Name, result.Err)
		return
	}

	manifests := fetchManifests(ctx, client, key, result.Releases)
	releases, failures := catalog.Transform(result.Releases, manifests)
	for _, f := range failures {
		log.Printf("updater: %s/%s release %s failed to transform: %v", key.Owner, key.Name, f.Tag, f.Err)
	}

	err := store.ReplaceRepo(key.Domain, key.Owner, key.Name, func(r catalog.Repo) catalog.Repo {
		etag := result.ETag
		if len(failures) > 0 {
			// Withhold the etag advance: the failed release's manifest or
			// asset reference may be fixed upstream by the next poll.
			etag = r.ReleasesETag
		}
		return r.WithReleases(releases, etag)
	})
	if err != nil {
		log.Printf("updater: %s/%s replacing releases: %v", key.Owner, key.Name, err)
	}
}

// applyLatest handles one LatestResult. It does not require Release.Tag to
// already be present among the repo's Releases — the two sub-fetches write
// disjoint fields and may land in either order (scenario S4); Repo.Latest
// reports not-found until the matching tag shows up via applyReleases.
func applyLatest(store *catalog.Store, key Key, result upstream.LatestResult) {
	switch result.Status {
	case upstream.NotModified:
		log.Printf("updater: %s/%s latest release not modified", key.Owner, key.Name)
		return
	case upstream.NotFound:
		log.Printf("updater: %s/%s latest release endpoint returned 404, leaving state unchanged", key.Owner, key.Name)
		return
	case upstream.Failed:
		log.Printf("updater: %s/%s fetching latest release failed: %v", key.Owner, key.Name, result.Err)
		return
	}

	err := store.ReplaceRepo(key.Domain, key.Owner, key.Name, func(r catalog.Repo) catalog.Repo {
		return r.WithLatest(result.Release.Tag, result.ETag)
	})
	if err != nil {
		log.Printf("updater: %s/%s replacing latest: %v", key.Owner, key.Name, err)
	}
}

// fetchManifests downloads and parses every manifest sidecar asset named
// among raw, keyed by the release ID each manifest belongs to. A manifest
// that fails to fetch or parse is logged and skipped; its release will
// subsequently fail transformation with a MissingAsset error for whatever
// entries it would have contributed.
func fetchManifests(ctx context.Context, client upstream.Client, key Key, raw []catalog.RawRelease) map[uint64][]catalog.ParsedManifest {
	out := make(map[uint64][]catalog.ParsedManifest)
	for _, rr := range raw {
		for _, asset := range rr.Assets {
			if !upstream.IsManifestAsset(asset.Name) {
				continue
			}
			manifest, err := client.FetchManifest(ctx, key.Owner, key.Name, asset.ID, asset.Name)
			if err != nil {
				log.Printf("updater: %s/%s release %s manifest %s: %v", key.Owner, key.Name, rr.Tag, asset.Name, err)
				continue
			}
			out[rr.ID] = append(out[rr.ID], manifest)
		}
	}
	return out
}
