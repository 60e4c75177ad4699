// SPDX-License-Identifier: MPL-2.0

package livetest

import (
	"fmt"

	"emupack-cli/internal/schema"
)

const (
	// maxReleasesToCheck bounds the number of release candidates fetched per
	// entry, keeping request cost predictable.
	maxReleasesToCheck = 25

	// maxStoredAPKURLs caps the asset URL sample kept on a result.
	maxStoredAPKURLs = 5

	// MaxDisplayedAPKURLs caps the asset URLs shown in verbose output.
	MaxDisplayedAPKURLs = 3
)

// apkExtensions are the downloadable-artifact suffixes recognized on assets
// and page links.
var apkExtensions = []string{".apk", ".xapk"}

type (
	// Result is the outcome of live-testing one entry.
	Result struct {
		AppName    string        `json:"app_name"`
		AppID      string        `json:"app_id"`
		Source     schema.Source `json:"source"`
		URL        string        `json:"url"`
		Passed     bool          `json:"passed"`
		Version    string        `json:"version,omitempty"`
		APKCount   int           `json:"apk_count"`
		APKURLs    []string      `json:"apk_urls,omitempty"`
		Error      string        `json:"error,omitempty"`
		Warnings   []string      `json:"warnings,omitempty"`
		DurationMS int64         `json:"duration_ms"`
	}

	// Document is the machine-readable batch output consumed by the issue
	// sync command.
	Document struct {
		Summary Summary  `json:"summary"`
		Results []Result `json:"results"`
	}

	// Summary aggregates a batch run.
	Summary struct {
		Total       int   `json:"total"`
		Passed      int   `json:"passed"`
		Failed      int   `json:"failed"`
		Warned      int   `json:"warned"`
		TotalTimeMS int64 `json:"total_time_ms"`
	}
)

// failf marks the result failed with a formatted message.
func (r *Result) failf(format string, args ...any) {
	r.Passed = false
	r.Error = fmt.Sprintf(format, args...)
}

// warnf appends a formatted warning.
func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// storeAPKs records the matched asset URLs, capped to the stored sample size.
func (r *Result) storeAPKs(urls []string) {
	r.APKCount = len(urls)
	if len(urls) > maxStoredAPKURLs {
		urls = urls[:maxStoredAPKURLs]
	}
	r.APKURLs = append([]string(nil), urls...)
}

// Summarize computes the batch summary for a result list.
func Summarize(results []Result) Summary {
	var s Summary
	s.Total = len(results)
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		if len(r.Warnings) > 0 {
			s.Warned++
		}
		s.TotalTimeMS += r.DurationMS
	}
	return s
}
