// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"emupack-cli/internal/docgen"
	"emupack-cli/pkg/catalog"
)

// githubNoreplySuffix is the domain GitHub assigns to privacy-protected
// commit emails. The local part encodes the username.
const githubNoreplySuffix = "@users.noreply.github.com"

// extractGitHubUsername pulls the username out of a noreply commit email.
// The local part is either "id+username" or just "username".
func extractGitHubUsername(email string) string {
	if !strings.HasSuffix(email, githubNoreplySuffix) {
		return ""
	}
	local := strings.TrimSuffix(email, githubNoreplySuffix)
	if _, username, found := strings.Cut(local, "+"); found {
		return username
	}
	return local
}

func formatContributor(name, email string) string {
	if username := extractGitHubUsername(email); username != "" {
		return "@" + username
	}
	return name
}

// contributors lists unique commit authors since the tag, mapped to
// GitHub mentions where possible. Owner emails are excluded so the
// maintainer does not thank themselves.
func (f *Flow) contributors(ctx context.Context, sinceTag string) ([]string, error) {
	lines, err := f.git.Log(ctx, sinceTag, "%an%x00%ae")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var contributors []string
	for _, line := range lines {
		name, email, found := strings.Cut(line, "\x00")
		if !found {
			continue
		}
		name, email = strings.TrimSpace(name), strings.TrimSpace(email)

		if f.ownerEmails[strings.ToLower(email)] {
			continue
		}

		formatted := formatContributor(name, email)
		if !seen[formatted] {
			seen[formatted] = true
			contributors = append(contributors, formatted)
		}
	}

	sort.Slice(contributors, func(i, j int) bool {
		return strings.ToLower(contributors[i]) < strings.ToLower(contributors[j])
	})
	return contributors, nil
}

// commitSummaries returns commit subject lines since the tag.
func (f *Flow) commitSummaries(ctx context.Context, sinceTag string) ([]string, error) {
	return f.git.Log(ctx, sinceTag, "%s")
}

// GenerateNotes builds release notes markdown: a commit summary, a
// contributors section, and app tables for the detected changes.
func (f *Flow) GenerateNotes(ctx context.Context, sinceTag string, diff *Diff) (string, error) {
	var lines []string

	lines = append(lines, "## Summary\n")
	commits, err := f.commitSummaries(ctx, sinceTag)
	if err != nil {
		return "", err
	}
	if len(commits) > 0 {
		for _, msg := range commits {
			if strings.HasPrefix(msg, "Merge ") || strings.HasPrefix(msg, "release:") {
				continue
			}
			lines = append(lines, "- "+msg)
		}
	} else {
		lines = append(lines, "- ")
	}
	lines = append(lines, "")

	contributors, err := f.contributors(ctx, sinceTag)
	if err != nil {
		return "", err
	}
	if len(contributors) > 0 {
		lines = append(lines, "## Contributors\n")
		lines = append(lines, "Thanks to the following people for their contributions to this release:\n")
		for _, contributor := range contributors {
			lines = append(lines, "- "+contributor)
		}
		lines = append(lines, "")
	}

	if len(diff.Added) > 0 {
		table, err := docgen.GroupedTable(diff.Added)
		if err != nil {
			return "", fmt.Errorf("render new apps table: %w", err)
		}
		lines = append(lines, "## New Apps\n", table, "")
	}

	if len(diff.Changed) > 0 {
		table, err := docgen.FlatTable(diff.Changed)
		if err != nil {
			return "", fmt.Errorf("render app updates table: %w", err)
		}
		lines = append(lines, "## App Updates\n", table, "")
	}

	if len(diff.Removed) > 0 {
		lines = append(lines, "## Removed Apps\n")
		removed := append([]*catalog.Entry(nil), diff.Removed...)
		sort.Slice(removed, func(i, j int) bool {
			return strings.ToLower(removed[i].DisplayName()) < strings.ToLower(removed[j].DisplayName())
		})
		for _, app := range removed {
			lines = append(lines, "- "+app.DisplayName())
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n"), nil
}
