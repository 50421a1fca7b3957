// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/fnichol/artifetch/artifetcherr"
	"github.com/fnichol/artifetch/catalog"
	"github.com/fnichol/artifetch/internal/httpx"
	"github.com/fnichol/artifetch/internal/urlx"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const acceptHeader = "application/vnd.github.v3+json"

// GitHubClient is the Client implementation for github.com and GitHub
// Enterprise (api/v3) domains.
type GitHubClient struct {
	http    httpx.BasicClient
	apiRoot *url.URL
	source  oauth2.TokenSource
}

var _ Client = (*GitHubClient)(nil)

// NewGitHubClient returns a Client for provider, issuing requests through
// httpClient. One instance is meant to be shared across every updater for
// the same provider domain. The provider's OAuthToken is held in an
// oauth2.StaticTokenSource purely as a typed credential holder: GitHub's
// classic token endpoints predate oauth2's "Bearer" convention and still
// expect "Authorization: token {tok}", so the header is built by hand
// rather than through an oauth2.Transport.
func NewGitHubClient(httpClient httpx.BasicClient, provider catalog.Provider) *GitHubClient {
	return &GitHubClient{
		http:    httpClient,
		apiRoot: urlx.MustParse(provider.APIRoot()),
		source:  oauth2.StaticTokenSource(&oauth2.Token{AccessToken: provider.GitHub.OAuthToken}),
	}
}

type ghAsset struct {
	ID                 uint64 `json:"id"`
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type ghRelease struct {
	ID         uint64    `json:"id"`
	TagName    string    `json:"tag_name"`
	Draft      bool      `json:"draft"`
	Prerelease bool      `json:"prerelease"`
	Assets     []ghAsset `json:"assets"`
}

type apiErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// newRequest builds a GET request against c.apiRoot joined with segments
// (each percent-escaped independently by urlx.JoinPath, so owner/repo names
// containing "/" can't smuggle extra path segments).
func (c *GitHubClient) newRequest(ctx context.Context, priorETag, accept string, segments ...string) (*http.Request, error) {
	u := urlx.JoinPath(c.apiRoot, segments...)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	tok, err := c.source.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+tok.AccessToken)
	if priorETag != "" {
		req.Header.Set("If-None-Match", priorETag)
	}
	return req, nil
}

// ListReleases implements Client.
func (c *GitHubClient) ListReleases(ctx context.Context, owner, name, priorETag string) ReleasesResult {
	req, err := c.newRequest(ctx, priorETag, acceptHeader, "repos", owner, name, "releases")
	if err != nil {
		return ReleasesResult{Status: Failed, Err: artifetcherr.Wrap(artifetcherr.Transport, err, "building request")}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ReleasesResult{Status: Failed, Err: artifetcherr.Wrap(artifetcherr.Transport, err, "listing releases")}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return ReleasesResult{Status: NotModified}
	case http.StatusNotFound:
		return ReleasesResult{Status: NotFound}
	}
	if resp.StatusCode/100 != 2 {
		return ReleasesResult{Status: Failed, Err: classifyAPIError(resp)}
	}

	var ghReleases []ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&ghReleases); err != nil {
		return ReleasesResult{Status: Failed, Err: artifetcherr.Wrap(artifetcherr.Deserialize, err, "decoding releases")}
	}
	raw, err := toRawReleases(ghReleases)
	if err != nil {
		return ReleasesResult{Status: Failed, Err: artifetcherr.Wrap(artifetcherr.Deserialize, err, "converting releases")}
	}
	return ReleasesResult{Status: OK, ETag: extractETag(resp.Header), Releases: raw}
}

// LatestRelease implements Client.
func (c *GitHubClient) LatestRelease(ctx context.Context, owner, name, priorETag string) LatestResult {
	req, err := c.newRequest(ctx, priorETag, acceptHeader, "repos", owner, name, "releases", "latest")
	if err != nil {
		return LatestResult{Status: Failed, Err: artifetcherr.Wrap(artifetcherr.Transport, err, "building request")}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return LatestResult{Status: Failed, Err: artifetcherr.Wrap(artifetcherr.Transport, err, "fetching latest release")}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return LatestResult{Status: NotModified}
	case http.StatusNotFound:
		return LatestResult{Status: NotFound}
	}
	if resp.StatusCode/100 != 2 {
		return LatestResult{Status: Failed, Err: classifyAPIError(resp)}
	}

	var rel ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return LatestResult{Status: Failed, Err: artifetcherr.Wrap(artifetcherr.Deserialize, err, "decoding latest release")}
	}
	raw, err := toRawRelease(rel)
	if err != nil {
		return LatestResult{Status: Failed, Err: artifetcherr.Wrap(artifetcherr.Deserialize, err, "converting latest release")}
	}
	return LatestResult{Status: OK, ETag: extractETag(resp.Header), Release: raw}
}

// FetchManifest implements Client. assetName is the manifest's upstream
// filename; the request asks for application/octet-stream so the upstream
// streams raw bytes rather than an asset metadata document.
func (c *GitHubClient) FetchManifest(ctx context.Context, owner, name string, assetID uint64, assetName string) (catalog.ParsedManifest, error) {
	req, err := c.newRequest(ctx, "", "application/octet-stream", "repos", owner, name, "releases", "assets", strconv.FormatUint(assetID, 10))
	if err != nil {
		return catalog.ParsedManifest{}, artifetcherr.Wrap(artifetcherr.Transport, err, "building manifest request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return catalog.ParsedManifest{}, artifetcherr.Wrap(artifetcherr.Transport, err, "fetching manifest")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return catalog.ParsedManifest{}, artifetcherr.New(artifetcherr.Transport, "manifest asset not found")
	}
	if resp.StatusCode/100 != 2 {
		return catalog.ParsedManifest{}, classifyAPIError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return catalog.ParsedManifest{}, artifetcherr.Wrap(artifetcherr.Transport, err, "reading manifest body")
	}
	return ParseManifest(LogicalName(assetName), body)
}

// classifyAPIError parses a non-2xx/304/404 response body as
// {success, message} per the upstream contract, surfacing APIError on
// success or Deserialize if the body itself is unparseable.
func classifyAPIError(resp *http.Response) error {
	var body apiErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return artifetcherr.Wrap(artifetcherr.Deserialize, err, "decoding error response ("+resp.Status+")")
	}
	return artifetcherr.New(artifetcherr.APIError, resp.Status+": "+body.Message)
}

// extractETag reads the ETag response header, treating an absent or
// non-UTF-8 value as "no etag" and logging a warning in the latter case —
// the upstream contract never requires one.
func extractETag(h http.Header) string {
	v := h.Get("ETag")
	if v == "" {
		return ""
	}
	if !utf8.ValidString(v) {
		log.Println("upstream: ignoring non-UTF-8 ETag header")
		return ""
	}
	return v
}

func toRawReleases(in []ghRelease) ([]catalog.RawRelease, error) {
	out := make([]catalog.RawRelease, 0, len(in))
	for _, r := range in {
		raw, err := toRawRelease(r)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func toRawRelease(r ghRelease) (catalog.RawRelease, error) {
	assets := make([]catalog.RawAsset, 0, len(r.Assets))
	for _, a := range r.Assets {
		var downloadURI *url.URL
		if a.BrowserDownloadURL != "" {
			u, err := url.Parse(a.BrowserDownloadURL)
			if err != nil {
				return catalog.RawRelease{}, errors.Wrapf(err, "asset %q has invalid download URI", a.Name)
			}
			downloadURI = u
		}
		assets = append(assets, catalog.RawAsset{ID: a.ID, Name: a.Name, DownloadURI: downloadURI})
	}
	return catalog.RawRelease{
		ID:         r.ID,
		Tag:        r.TagName,
		Draft:      r.Draft,
		Prerelease: r.Prerelease,
		Assets:     assets,
	}, nil
}
