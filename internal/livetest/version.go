// SPDX-License-Identifier: MPL-2.0

package livetest

import (
	"fmt"
	"regexp"
	"strconv"
)

// extractVersion applies the entry's versionExtractionRegEx to a raw version
// string. Group selection: matchGroupToUse names (or indexes) a capture group;
// otherwise the first capture group when one exists, else the whole match.
// A non-compiling regex keeps the raw string and returns a warning instead of
// failing the entry.
func extractVersion(raw string, settings Settings) (version string, warning string) {
	pattern := settings.String("versionExtractionRegEx")
	if pattern == "" || raw == "" {
		return raw, ""
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return raw, fmt.Sprintf("versionExtractionRegEx error: %v", err)
	}

	match := re.FindStringSubmatch(raw)
	if match == nil {
		return raw, ""
	}

	group := settings.String("matchGroupToUse")
	if group != "" {
		if idx := re.SubexpIndex(group); idx >= 0 && idx < len(match) {
			return match[idx], ""
		}
		if idx, convErr := strconv.Atoi(group); convErr == nil && idx >= 0 && idx < len(match) {
			return match[idx], ""
		}
		return raw, fmt.Sprintf("matchGroupToUse %q not found in pattern %q", group, pattern)
	}

	if len(match) > 1 {
		return match[1], ""
	}
	return match[0], ""
}
