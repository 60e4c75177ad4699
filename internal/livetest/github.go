// SPDX-License-Identifier: MPL-2.0

package livetest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// lowQuotaThreshold is the remaining-request count below which a run
	// surfaces a rate-limit warning.
	lowQuotaThreshold = 10

	// quotaUnknown marks a response that carried no rate-limit headers.
	quotaUnknown = -1
)

type (
	// GitHubClient queries the GitHub Releases API for an entry's release
	// candidates.
	GitHubClient struct {
		httpClient *http.Client
		baseURL    string
		token      string
	}

	// GitHubOption configures a GitHubClient during construction.
	GitHubOption func(*GitHubClient)

	// githubRelease is the JSON wire format of a GitHub release.
	githubRelease struct {
		TagName    string        `json:"tag_name"`
		Name       string        `json:"name"`
		Body       string        `json:"body"`
		Draft      bool          `json:"draft"`
		Prerelease bool          `json:"prerelease"`
		Assets     []githubAsset `json:"assets"`
	}

	// githubAsset is the JSON wire format of a release asset.
	githubAsset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	}
)

// WithGitHubBaseURL overrides the API base URL, primarily for test servers.
func WithGitHubBaseURL(base string) GitHubOption {
	return func(c *GitHubClient) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithGitHubToken sets a personal access token. Authenticated requests have a
// much higher rate limit (5000/hour vs 60/hour).
func WithGitHubToken(token string) GitHubOption {
	return func(c *GitHubClient) {
		c.token = token
	}
}

// WithGitHubHTTPClient sets a custom HTTP client.
func WithGitHubHTTPClient(client *http.Client) GitHubOption {
	return func(c *GitHubClient) {
		c.httpClient = client
	}
}

// NewGitHubClient creates a client with production defaults.
func NewGitHubClient(opts ...GitHubOption) *GitHubClient {
	c := &GitHubClient{
		httpClient: http.DefaultClient,
		baseURL:    "https://api.github.com",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseOwnerRepo splits a repository URL into owner, repo, and host.
func ParseOwnerRepo(rawURL string) (owner, repo, host string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", "", fmt.Errorf("cannot parse owner/repo from: %s", rawURL)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("cannot parse owner/repo from: %s", rawURL)
	}
	return parts[0], parts[1], u.Host, nil
}

// ListReleases fetches the most recent release candidates for a repository,
// capped at maxReleasesToCheck. The second return value is the remaining API
// quota, or quotaUnknown when the response carried no rate-limit headers.
func (c *GitHubClient) ListReleases(ctx context.Context, owner, repo string) ([]Release, int, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d",
		c.baseURL, owner, repo, maxReleasesToCheck)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, quotaUnknown, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, quotaUnknown, fmt.Errorf("GitHub API error: %w", err)
	}
	defer resp.Body.Close()

	remaining := parseRemainingQuota(resp.Header)

	if resp.StatusCode == http.StatusForbidden && remaining == 0 {
		return nil, remaining, fmt.Errorf(
			"GitHub API rate limit exceeded (rate limited - set GITHUB_TOKEN env var)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remaining, fmt.Errorf("GitHub API error: unexpected status %d", resp.StatusCode)
	}

	var wire []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, remaining, fmt.Errorf("decoding releases: %w", err)
	}

	releases := make([]Release, 0, len(wire))
	for _, gr := range wire {
		releases = append(releases, Release{
			TagName:    gr.TagName,
			Name:       gr.Name,
			Body:       gr.Body,
			Draft:      gr.Draft,
			Prerelease: gr.Prerelease,
			Assets:     toAssets(gr.Assets),
		})
	}
	return releases, remaining, nil
}

// toAssets converts the wire assets to the generic asset type.
func toAssets(wire []githubAsset) []Asset {
	assets := make([]Asset, 0, len(wire))
	for _, a := range wire {
		assets = append(assets, Asset{Name: a.Name, DownloadURL: a.BrowserDownloadURL})
	}
	return assets
}

// parseRemainingQuota reads the X-RateLimit-Remaining header, returning
// quotaUnknown when absent or malformed.
func parseRemainingQuota(header http.Header) int {
	raw := header.Get("X-RateLimit-Remaining")
	if raw == "" {
		return quotaUnknown
	}
	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return quotaUnknown
	}
	return remaining
}
