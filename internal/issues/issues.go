// SPDX-License-Identifier: MPL-2.0

// Package issues turns live test results into GitHub issue activity:
// it opens an issue for each newly failing app and closes issues for
// apps that pass again.
package issues

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"emupack-cli/internal/ghcli"
	"emupack-cli/internal/livetest"
)

const (
	// Label marks issues this automation owns.
	Label = "automated-test-failure"

	// TitlePrefix identifies automation-created issues by title.
	TitlePrefix = "[Automated Test Failure]"

	labelColor       = "d93f0b"
	labelDescription = "Automatically created when a scheduled app test fails"
)

type (
	// Manager reconciles test results with open issues.
	Manager struct {
		gh     *ghcli.GH
		runURL string
		dryRun bool
		logger *log.Logger
	}

	// Option configures a Manager.
	Option func(*Manager)
)

// WithGH replaces the gh wrapper, for tests.
func WithGH(g *ghcli.GH) Option {
	return func(m *Manager) { m.gh = g }
}

// WithRunURL records the workflow run URL linked from issue bodies.
func WithRunURL(url string) Option {
	return func(m *Manager) { m.runURL = url }
}

// WithDryRun reports planned actions without creating or closing issues.
func WithDryRun(dryRun bool) Option {
	return func(m *Manager) { m.dryRun = dryRun }
}

// WithLogger sets the logger for progress output.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates an issue manager operating in dir.
func NewManager(dir string, opts ...Option) *Manager {
	m := &Manager{
		gh:     ghcli.New(dir),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// issueTitle builds the canonical title for an app's failure issue.
func issueTitle(appName string) string {
	return TitlePrefix + " " + appName
}

// issueBody renders the failure report for a result.
func issueBody(r livetest.Result, runURL string) string {
	errText := r.Error
	if errText == "" {
		errText = "unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The scheduled test run detected a failure for **%s**.\n\n", r.AppName)
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(&b, "| App ID | `%s` |\n", r.AppID)
	fmt.Fprintf(&b, "| Source | %s |\n", r.Source)
	fmt.Fprintf(&b, "| URL | %s |\n", r.URL)
	fmt.Fprintf(&b, "| Error | %s |\n\n", errText)

	if len(r.Warnings) > 0 {
		b.WriteString("**Warnings:**\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "[Workflow run](%s)\n", runURL)
	return b.String()
}

// findOpenIssue locates an open automation issue for the app, returning
// its number or zero.
func (m *Manager) findOpenIssue(ctx context.Context, appName string) (int, error) {
	found, err := m.gh.IssueList(ctx, ghcli.IssueFilter{
		Label:  Label,
		State:  "open",
		Search: issueTitle(appName) + " in:title",
	})
	if err != nil {
		return 0, err
	}
	for _, issue := range found {
		if strings.Contains(issue.Title, appName) {
			return issue.Number, nil
		}
	}
	return 0, nil
}

// Process reconciles the result set: new failures get issues, recovered
// apps get theirs closed. Returns counts of issues created and closed.
func (m *Manager) Process(ctx context.Context, results []livetest.Result) (created, closed int, err error) {
	if m.dryRun {
		m.logger.Info("dry run: no issues will be created or closed")
	} else {
		if err := m.gh.LabelEnsure(ctx, Label, labelColor, labelDescription); err != nil {
			return 0, 0, fmt.Errorf("ensure label: %w", err)
		}
	}

	for _, r := range results {
		if r.Passed {
			continue
		}
		if m.dryRun {
			m.logger.Info("would create issue", "title", issueTitle(r.AppName), "error", r.Error)
			continue
		}
		existing, err := m.findOpenIssue(ctx, r.AppName)
		if err != nil {
			return created, closed, err
		}
		if existing != 0 {
			m.logger.Info("skipped, open issue already exists", "app", r.AppName, "issue", existing)
			continue
		}
		if _, err := m.gh.IssueCreate(ctx, issueTitle(r.AppName), issueBody(r, m.runURL), []string{Label}); err != nil {
			return created, closed, fmt.Errorf("create issue for %s: %w", r.AppName, err)
		}
		m.logger.Info("created issue", "title", issueTitle(r.AppName))
		created++
	}

	for _, r := range results {
		if !r.Passed {
			continue
		}
		if m.dryRun {
			m.logger.Info("would check/close issue", "app", r.AppName)
			continue
		}
		existing, err := m.findOpenIssue(ctx, r.AppName)
		if err != nil {
			return created, closed, err
		}
		if existing == 0 {
			continue
		}
		comment := fmt.Sprintf(
			"**%s** is passing again in the latest scheduled test run.\n\n[Workflow run](%s)",
			r.AppName, m.runURL)
		if err := m.gh.IssueClose(ctx, existing, comment); err != nil {
			return created, closed, fmt.Errorf("close issue #%d: %w", existing, err)
		}
		m.logger.Info("closed issue, app recovered", "issue", existing, "app", r.AppName)
		closed++
	}

	return created, closed, nil
}
