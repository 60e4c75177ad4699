// SPDX-License-Identifier: MPL-2.0

package livetest

import (
	"fmt"
	"regexp"
	"strings"
)

type (
	// Release is a source-agnostic release candidate, in the source's native
	// order (typically reverse-chronological).
	Release struct {
		TagName    string
		Name       string
		Body       string
		Draft      bool
		Prerelease bool
		Assets     []Asset
	}

	// Asset is one downloadable artifact attached to a release.
	Asset struct {
		Name        string
		DownloadURL string
	}
)

// hasAPKExtension reports whether the name ends in a recognized artifact
// suffix.
func hasAPKExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range apkExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// collectAPKs extracts artifact download URLs from a release's asset list.
// Zip archives are included only when the entry opts in via includeZips.
func collectAPKs(assets []Asset, settings Settings) []string {
	var urls []string
	for _, asset := range assets {
		name := strings.ToLower(asset.Name)
		switch {
		case hasAPKExtension(name):
			urls = append(urls, asset.DownloadURL)
		case strings.HasSuffix(name, ".zip") && settings.Bool("includeZips"):
			urls = append(urls, asset.DownloadURL)
		}
	}
	return urls
}

// applyAPKFilter applies the apkFilterRegEx include/exclude filter over
// candidate URLs. invertAPKFilter turns the match into an exclusion.
func applyAPKFilter(urls []string, settings Settings) ([]string, error) {
	pattern := settings.String("apkFilterRegEx")
	if pattern == "" || len(urls) == 0 {
		return urls, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("apkFilterRegEx: %w", err)
	}

	invert := settings.Bool("invertAPKFilter")
	var kept []string
	for _, u := range urls {
		if re.MatchString(u) != invert {
			kept = append(kept, u)
		}
	}
	return kept, nil
}

// findReleaseWithAPKs walks the candidates in order and returns the first one
// yielding at least one matching artifact, applying the inclusion filters in
// fixed order: drafts out, prereleases out unless opted in, then the title and
// notes regex filters.
//
// When a qualifying release has no artifacts and fallbackToOlderReleases is
// disabled, the walk stops there. Track-only entries fall back to any release
// carrying a version tag.
func findReleaseWithAPKs(releases []Release, settings Settings, titleRe, notesRe *regexp.Regexp) (*Release, []string, error) {
	includePrereleases := settings.Bool("includePrereleases")
	trackOnly := settings.Bool("trackOnly")
	fallback := settings.BoolDefault("fallbackToOlderReleases", true)

	for i := range releases {
		release := &releases[i]
		if release.Draft {
			continue
		}
		if release.Prerelease && !includePrereleases {
			continue
		}
		if titleRe != nil && !titleRe.MatchString(release.Name) {
			continue
		}
		if notesRe != nil && !notesRe.MatchString(release.Body) {
			continue
		}

		urls := collectAPKs(release.Assets, settings)
		urls, err := applyAPKFilter(urls, settings)
		if err != nil {
			return nil, nil, err
		}

		if len(urls) == 0 && !trackOnly {
			if fallback {
				continue
			}
			break
		}
		return release, urls, nil
	}

	if trackOnly {
		for i := range releases {
			if releases[i].TagName != "" {
				return &releases[i], nil, nil
			}
		}
	}
	return nil, nil, nil
}

// versionOf returns the raw version string for a chosen release: the tag,
// else the release title.
func versionOf(release *Release) string {
	if release.TagName != "" {
		return release.TagName
	}
	return release.Name
}

// filterContext renders the active filters for a diagnostic message, e.g.
// ", titleFilter=foo, apkFilter=bar".
func filterContext(filters ...[2]string) string {
	var b strings.Builder
	for _, f := range filters {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(&b, ", %s=%s", f[0], f[1])
	}
	return b.String()
}

// checkAPKIndex returns a warning when the entry's preferredApkIndex points
// past the matched artifact list.
func checkAPKIndex(preferredIndex, apkCount int) string {
	if apkCount > 0 && preferredIndex >= apkCount {
		return fmt.Sprintf("preferredApkIndex=%d but only %d APKs found", preferredIndex, apkCount)
	}
	return ""
}
