// SPDX-License-Identifier: MPL-2.0

package release

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// semverPattern matches release tags: a three-part version with an
// optional leading v.
var semverPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// Suggestions holds the next-version candidates derived from the latest tag.
type Suggestions struct {
	Patch string
	Minor string
	Major string
}

// NormalizeVersion prepends a v when missing and validates the semver
// format.
func NormalizeVersion(version string) (string, error) {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semverPattern.MatchString(version) {
		return "", fmt.Errorf("invalid semver format: %s", version)
	}
	return version, nil
}

// LatestTag returns the newest semver tag from the list, or "" when none
// match. Non-semver tags are skipped.
func LatestTag(tags []string) string {
	latest := ""
	for _, tag := range tags {
		if !semverPattern.MatchString(tag) {
			continue
		}
		canonical := tag
		if !strings.HasPrefix(canonical, "v") {
			canonical = "v" + canonical
		}
		if latest == "" || semver.Compare(canonical, latest) > 0 {
			latest = canonical
		}
	}
	return latest
}

// SuggestVersions derives patch, minor, and major bumps from the latest
// tag. With no prior tag the suggestions start from zero.
func SuggestVersions(latest string) Suggestions {
	if latest == "" {
		return Suggestions{Patch: "v0.0.1", Minor: "v0.1.0", Major: "v1.0.0"}
	}

	major, minor, patch := parseSemver(latest)
	return Suggestions{
		Patch: fmt.Sprintf("v%d.%d.%d", major, minor, patch+1),
		Minor: fmt.Sprintf("v%d.%d.0", major, minor+1),
		Major: fmt.Sprintf("v%d.0.0", major+1),
	}
}

func parseSemver(tag string) (major, minor, patch int) {
	m := semverPattern.FindStringSubmatch(tag)
	if m == nil {
		return 0, 0, 0
	}
	major, _ = strconv.Atoi(m[1])
	minor, _ = strconv.Atoi(m[2])
	patch, _ = strconv.Atoi(m[3])
	return major, minor, patch
}
