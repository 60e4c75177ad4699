// SPDX-License-Identifier: MPL-2.0

// Package gitcli wraps the git command-line tool with the handful of
// operations the release flow needs: tag listing and creation, historical
// file reads, commit logs, and working tree state.
package gitcli

import (
	"context"
	"fmt"
	"strings"

	"emupack-cli/internal/execx"
)

type (
	// Git runs git commands in a fixed repository directory.
	Git struct {
		runner execx.Runner
		dir    string
	}

	// Option configures a Git wrapper.
	Option func(*Git)
)

// WithRunner replaces the command runner, for tests.
func WithRunner(r execx.Runner) Option {
	return func(g *Git) { g.runner = r }
}

// New creates a Git wrapper rooted at dir.
func New(dir string, opts ...Option) *Git {
	g := &Git{runner: execx.OSRunner{}, dir: dir}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Installed reports whether the git binary is available.
func Installed() bool {
	return execx.LookPath("git")
}

// run executes git with the given arguments and returns stdout. A non-zero
// exit becomes an error carrying stderr.
func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	out, err := g.runner.Run(ctx, execx.Request{Name: "git", Args: args, Dir: g.dir})
	if err != nil {
		return "", err
	}
	if out.ExitCode != 0 {
		return "", fmt.Errorf("git %s: exit %d: %s",
			strings.Join(args, " "), out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	return out.Stdout, nil
}

// FetchTags fetches tags from the default remote.
func (g *Git) FetchTags(ctx context.Context) error {
	_, err := g.run(ctx, "fetch", "--tags")
	return err
}

// Tags returns all tags sorted by version, newest first.
func (g *Git) Tags(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "tag", "--sort=-v:refname")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// TagExists reports whether the tag is already present.
func (g *Git) TagExists(ctx context.Context, tag string) (bool, error) {
	out, err := g.run(ctx, "tag", "-l", tag)
	if err != nil {
		return false, err
	}
	for _, line := range splitLines(out) {
		if line == tag {
			return true, nil
		}
	}
	return false, nil
}

// CreateTag creates a lightweight tag at HEAD.
func (g *Git) CreateTag(ctx context.Context, tag string) error {
	_, err := g.run(ctx, "tag", tag)
	return err
}

// PushTag pushes one tag to origin.
func (g *Git) PushTag(ctx context.Context, tag string) error {
	_, err := g.run(ctx, "push", "origin", tag)
	return err
}

// Push pushes the current branch.
func (g *Git) Push(ctx context.Context) error {
	_, err := g.run(ctx, "push")
	return err
}

// ShowFileAtRef returns the contents of a file at a historical ref. A missing
// file or unknown ref returns ok=false without an error, since a first
// release legitimately has no prior state.
func (g *Git) ShowFileAtRef(ctx context.Context, ref, path string) (content string, ok bool) {
	out, err := g.runner.Run(ctx, execx.Request{
		Name: "git",
		Args: []string{"show", ref + ":" + path},
		Dir:  g.dir,
	})
	if err != nil || out.ExitCode != 0 {
		return "", false
	}
	return out.Stdout, true
}

// Log returns commit log lines since the given tag (or the full history when
// sinceTag is empty), one line per commit, using the given pretty format.
func (g *Git) Log(ctx context.Context, sinceTag, prettyFormat string) ([]string, error) {
	args := []string{"log"}
	if sinceTag != "" {
		args = append(args, sinceTag+"..HEAD")
	}
	args = append(args, "--pretty=format:"+prettyFormat)

	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// StatusClean reports whether the working tree has no pending changes.
func (g *Git) StatusClean(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// AddAll stages every change.
func (g *Git) AddAll(ctx context.Context) error {
	_, err := g.run(ctx, "add", "-A")
	return err
}

// Commit creates a commit with the given message.
func (g *Git) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	return err
}

// splitLines splits trimmed output into non-empty lines.
func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
