// SPDX-License-Identifier: MPL-2.0

package livetest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type (
	// GiteaClient queries a Gitea/Forgejo releases API (Codeberg and other
	// self-hosted forges share this API surface).
	GiteaClient struct {
		httpClient *http.Client
		scheme     string
	}

	// GiteaOption configures a GiteaClient during construction.
	GiteaOption func(*GiteaClient)

	// giteaRelease is the JSON wire format of a Gitea release; it matches the
	// GitHub shape closely enough to share field names.
	giteaRelease struct {
		TagName    string       `json:"tag_name"`
		Name       string       `json:"name"`
		Body       string       `json:"body"`
		Draft      bool         `json:"draft"`
		Prerelease bool         `json:"prerelease"`
		Assets     []giteaAsset `json:"assets"`
	}

	giteaAsset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	}
)

// WithGiteaHTTPClient sets a custom HTTP client.
func WithGiteaHTTPClient(client *http.Client) GiteaOption {
	return func(c *GiteaClient) {
		c.httpClient = client
	}
}

// WithGiteaScheme overrides the URL scheme used to reach the forge host,
// primarily for plain-HTTP test servers.
func WithGiteaScheme(scheme string) GiteaOption {
	return func(c *GiteaClient) {
		c.scheme = scheme
	}
}

// NewGiteaClient creates a client with production defaults.
func NewGiteaClient(opts ...GiteaOption) *GiteaClient {
	c := &GiteaClient{
		httpClient: http.DefaultClient,
		scheme:     "https",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListReleases fetches the most recent release candidates from the forge at
// the given host, capped at maxReleasesToCheck.
func (c *GiteaClient) ListReleases(ctx context.Context, host, owner, repo string) ([]Release, error) {
	apiURL := fmt.Sprintf("%s://%s/api/v1/repos/%s/%s/releases?limit=%d",
		c.scheme, host, owner, repo, maxReleasesToCheck)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Codeberg API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Codeberg API error: unexpected status %d", resp.StatusCode)
	}

	var wire []giteaRelease
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding releases: %w", err)
	}

	releases := make([]Release, 0, len(wire))
	for _, gr := range wire {
		assets := make([]Asset, 0, len(gr.Assets))
		for _, a := range gr.Assets {
			assets = append(assets, Asset{Name: a.Name, DownloadURL: a.BrowserDownloadURL})
		}
		releases = append(releases, Release{
			TagName:    gr.TagName,
			Name:       gr.Name,
			Body:       gr.Body,
			Draft:      gr.Draft,
			Prerelease: gr.Prerelease,
			Assets:     assets,
		})
	}
	return releases, nil
}
