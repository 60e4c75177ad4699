// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"net/url"
	"sort"
	"strings"
)

// Source identifies which fetch/parse strategy resolves an entry's releases.
type Source string

const (
	SourceGitHub        Source = "GitHub"
	SourceGitLab        Source = "GitLab"
	SourceCodeberg      Source = "Codeberg"
	SourceFDroid        Source = "FDroid"
	SourceIzzyOnDroid   Source = "IzzyOnDroid"
	SourceHTML          Source = "HTML"
	SourceDirectAPKLink Source = "DirectAPKLink"
)

// knownSources is the set of valid overrideSource values.
var knownSources = map[Source]bool{
	SourceGitHub:        true,
	SourceGitLab:        true,
	SourceCodeberg:      true,
	SourceFDroid:        true,
	SourceIzzyOnDroid:   true,
	SourceHTML:          true,
	SourceDirectAPKLink: true,
}

// sourceHosts maps well-known hosts to their source type. Matching is exact or
// by domain suffix, after stripping a leading "www.".
var sourceHosts = map[string]Source{
	"github.com":      SourceGitHub,
	"gitlab.com":      SourceGitLab,
	"codeberg.org":    SourceCodeberg,
	"f-droid.org":     SourceFDroid,
	"apt.izzysoft.de": SourceIzzyOnDroid,
}

// IsKnownSource reports whether the tag names a supported source type.
func IsKnownSource(s Source) bool {
	return knownSources[s]
}

// KnownSourceNames returns the valid source tags sorted alphabetically, for
// error messages.
func KnownSourceNames() []string {
	names := make([]string, 0, len(knownSources))
	for s := range knownSources {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// DetectSource infers the source type from a repository URL's host. Returns
// "" when the host is not recognized.
func DetectSource(rawURL string) Source {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	for domain, source := range sourceHosts {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return source
		}
	}
	return ""
}

// EffectiveSource resolves the source used for an entry: the explicit override
// wins, then URL-host inference, then the generic page-scrape strategy.
func EffectiveSource(override Source, rawURL string) Source {
	if override != "" {
		return override
	}
	if detected := DetectSource(rawURL); detected != "" {
		return detected
	}
	return SourceHTML
}
