// SPDX-License-Identifier: MPL-2.0

// Package release implements the publish flow: semver tag discovery,
// app-change detection against the previous release, release note
// generation, and tagging plus GitHub release creation with versioned
// JSON artifacts.
package release
