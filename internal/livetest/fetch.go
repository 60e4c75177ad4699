// SPDX-License-Identifier: MPL-2.0

package livetest

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// userAgent mimics the installer app's own mobile browser identity; some
	// download pages serve different artifact lists to desktop agents.
	userAgent = "Mozilla/5.0 (Linux; Android 10; K) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/114.0.0.0 Mobile Safari/537.36"

	// requestTimeout bounds every outbound request.
	requestTimeout = 30 * time.Second

	// maxResponseBytes is the upper bound on fetched body size (10 MB),
	// preventing unbounded memory use on malformed responses.
	maxResponseBytes = 10 << 20
)

type (
	// fetcher issues the harness's outbound HTTP requests: one blocking
	// request at a time, no retries, no caching.
	fetcher struct {
		client *http.Client
	}

	// fetchResponse is a fully-read HTTP response.
	fetchResponse struct {
		Body     []byte
		Header   http.Header
		FinalURL string
		Status   int
	}
)

// newFetcher builds the shared HTTP client. Certificate verification is
// disabled because several upstream download hosts serve self-signed chains;
// the harness only reads public release metadata.
func newFetcher() *fetcher {
	return &fetcher{
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // See comment above.
			},
		},
	}
}

// get fetches a URL with the harness's default headers plus any extras,
// following redirects, and returns the body, headers, and final URL.
func (f *fetcher) get(ctx context.Context, rawURL string, headers map[string]string) (*fetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &fetchResponse{
		Body:     body,
		Header:   resp.Header,
		FinalURL: finalURL,
		Status:   resp.StatusCode,
	}, nil
}
