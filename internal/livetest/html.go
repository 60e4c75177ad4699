// SPDX-License-Identifier: MPL-2.0

package livetest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// extractLinks parses an HTML body and returns every <a href> resolved
// against the page URL. Unresolvable hrefs are skipped.
func extractLinks(body []byte, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var links []string
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return links
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key != "href" || attr.Val == "" {
					continue
				}
				links = append(links, resolveLink(base, attr.Val))
			}
		}
	}
}

// resolveLink joins an href against the page URL, falling back to the raw
// href when either side fails to parse.
func resolveLink(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// filterLinksByRegex keeps links matching the pattern.
func filterLinksByRegex(links []string, pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("link filter regex: %w", err)
	}
	var kept []string
	for _, link := range links {
		if re.MatchString(link) {
			kept = append(kept, link)
		}
	}
	return kept, nil
}

// filterLinksByExtension keeps links ending in a recognized artifact suffix.
func filterLinksByExtension(links []string) []string {
	var kept []string
	for _, link := range links {
		if hasAPKExtension(link) {
			kept = append(kept, link)
		}
	}
	return kept
}

// sortLinks orders candidate links the way the installer does before taking
// the last element: lexicographic, optionally keyed by the final URL segment,
// optionally reversed, or skipped entirely.
func sortLinks(links []string, step LinkStep) []string {
	if step.SkipSort {
		return links
	}

	sorted := append([]string(nil), links...)
	if step.SortByLastSegment {
		sort.SliceStable(sorted, func(i, j int) bool {
			return lastSegment(sorted[i]) < lastSegment(sorted[j])
		})
	} else {
		sort.Strings(sorted)
	}

	if step.ReverseSort {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}
	return sorted
}

// lastSegment returns the substring after the final '/'.
func lastSegment(link string) string {
	if idx := strings.LastIndex(link, "/"); idx >= 0 {
		return link[idx+1:]
	}
	return link
}

// followIntermediateLinks walks the entry's intermediateLink chain. Each step
// fetches the current URL, extracts and filters its links, sorts them, and
// picks the LAST link after sorting, mirroring the installer's own selection
// rule. Returns the final URL for the main page fetch.
func (r *Runner) followIntermediateLinks(ctx context.Context, startURL string, steps []LinkStep, headers map[string]string) (string, error) {
	current := startURL
	for i, step := range steps {
		resp, err := r.fetch.get(ctx, current, headers)
		if err != nil {
			return current, fmt.Errorf("failed to fetch intermediate URL (%s): %w", current, err)
		}

		links := extractLinks(resp.Body, resp.FinalURL)
		if step.FilterRegex != "" {
			links, err = filterLinksByRegex(links, step.FilterRegex)
			if err != nil {
				return current, fmt.Errorf("intermediate link step %d: %w", i, err)
			}
		}

		links = sortLinks(links, step)
		if len(links) == 0 {
			return current, fmt.Errorf(
				"intermediate link step %d found no matching links (url=%s, regex=%q)",
				i, current, step.FilterRegex)
		}

		current = links[len(links)-1]
	}
	return current, nil
}
