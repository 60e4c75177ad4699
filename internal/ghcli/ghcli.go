// SPDX-License-Identifier: MPL-2.0

// Package ghcli wraps the GitHub CLI for release publishing and issue
// automation. Authentication goes through gh itself: a GH_TOKEN in the
// environment is preferred, otherwise gh falls back to its stored login.
package ghcli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"emupack-cli/internal/execx"
)

type (
	// GH runs gh commands against a fixed repository directory.
	GH struct {
		runner execx.Runner
		dir    string
	}

	// Option configures a GH wrapper.
	Option func(*GH)

	// Issue is the subset of issue fields the automation reads back
	// from gh's JSON output.
	Issue struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		State  string `json:"state"`
	}

	// IssueFilter narrows an issue listing.
	IssueFilter struct {
		Label  string
		State  string
		Search string
	}
)

// WithRunner replaces the command runner, for tests.
func WithRunner(r execx.Runner) Option {
	return func(g *GH) { g.runner = r }
}

// New creates a GH wrapper rooted at dir.
func New(dir string, opts ...Option) *GH {
	g := &GH{runner: execx.OSRunner{}, dir: dir}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Installed reports whether the gh binary is available.
func Installed() bool {
	return execx.LookPath("gh")
}

func (g *GH) run(ctx context.Context, args ...string) (string, error) {
	req := execx.Request{Name: "gh", Args: args, Dir: g.dir}
	if token := os.Getenv("GH_TOKEN"); token == "" {
		if token = os.Getenv("GITHUB_TOKEN"); token != "" {
			req.Env = append(execx.Environ(), "GH_TOKEN="+token)
		}
	}
	out, err := g.runner.Run(ctx, req)
	if err != nil {
		return "", err
	}
	if out.ExitCode != 0 {
		return "", fmt.Errorf("gh %s: exit %d: %s",
			strings.Join(args, " "), out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	return out.Stdout, nil
}

// AuthStatus reports whether gh has working credentials.
func (g *GH) AuthStatus(ctx context.Context) error {
	_, err := g.run(ctx, "auth", "status")
	return err
}

// ReleaseCreate publishes a release for an existing tag with notes and
// attached asset files. Empty notes fall back to GitHub's generated ones.
func (g *GH) ReleaseCreate(ctx context.Context, tag, title, notes string, assets []string) error {
	args := []string{"release", "create", tag}
	if notes != "" {
		args = append(args, "--notes", notes)
	} else {
		args = append(args, "--generate-notes")
	}
	args = append(args, "--title", title)
	args = append(args, assets...)
	_, err := g.run(ctx, args...)
	return err
}

// LabelEnsure creates a label if it does not exist yet. An already existing
// label is not an error.
func (g *GH) LabelEnsure(ctx context.Context, name, color, description string) error {
	_, err := g.run(ctx, "label", "create", name,
		"--color", color, "--description", description)
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil
	}
	return err
}

// IssueList returns issues matching the filter as structured records.
func (g *GH) IssueList(ctx context.Context, filter IssueFilter) ([]Issue, error) {
	args := []string{"issue", "list", "--json", "number,title,state"}
	if filter.Label != "" {
		args = append(args, "--label", filter.Label)
	}
	if filter.State != "" {
		args = append(args, "--state", filter.State)
	}
	if filter.Search != "" {
		args = append(args, "--search", filter.Search)
	}

	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	var issues []Issue
	if err := json.Unmarshal([]byte(out), &issues); err != nil {
		return nil, fmt.Errorf("parse issue list: %w", err)
	}
	return issues, nil
}

// IssueCreate opens a new issue and returns its URL.
func (g *GH) IssueCreate(ctx context.Context, title, body string, labels []string) (string, error) {
	args := []string{"issue", "create", "--title", title, "--body", body}
	for _, label := range labels {
		args = append(args, "--label", label)
	}
	out, err := g.run(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IssueClose closes an issue, optionally leaving a comment first.
func (g *GH) IssueClose(ctx context.Context, number int, comment string) error {
	args := []string{"issue", "close", fmt.Sprint(number)}
	if comment != "" {
		args = append(args, "--comment", comment)
	}
	_, err := g.run(ctx, args...)
	return err
}
