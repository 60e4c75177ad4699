// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"emupack-cli/internal/ghcli"
	"emupack-cli/internal/gitcli"
	"emupack-cli/pkg/catalog"
)

type (
	// Flow drives a release end to end against one repository checkout.
	Flow struct {
		git         *gitcli.Git
		gh          *ghcli.GH
		repoRoot    string
		registry    string
		artifacts   []string
		ownerEmails map[string]bool
		logger      *log.Logger
	}

	// Option configures a Flow.
	Option func(*Flow)

	// Plan captures everything decided before publishing: the chosen
	// version, the previous tag, and the detected app changes.
	Plan struct {
		Version   string
		LatestTag string
		Diff      *Diff
		Notes     string
	}
)

// ArtifactNames are the minified export files, relative to the repo root,
// that get versioned copies attached to each release.
var ArtifactNames = []string{
	"obtainium-emulation-pack-latest.json",
	"obtainium-emulation-pack-dual-screen-latest.json",
}

// WithGit replaces the git wrapper, for tests.
func WithGit(g *gitcli.Git) Option {
	return func(f *Flow) { f.git = g }
}

// WithGH replaces the gh wrapper, for tests.
func WithGH(g *ghcli.GH) Option {
	return func(f *Flow) { f.gh = g }
}

// WithLogger sets the logger for progress output.
func WithLogger(l *log.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

// WithOwnerEmails excludes the given commit emails from the contributors
// section. Comparison is case insensitive.
func WithOwnerEmails(emails []string) Option {
	return func(f *Flow) {
		for _, email := range emails {
			email = strings.ToLower(strings.TrimSpace(email))
			if email != "" {
				f.ownerEmails[email] = true
			}
		}
	}
}

// NewFlow creates a release flow for the repository at repoRoot, whose
// registry file lives at registryPath (relative to the root).
func NewFlow(repoRoot, registryPath string, opts ...Option) *Flow {
	f := &Flow{
		git:         gitcli.New(repoRoot),
		gh:          ghcli.New(repoRoot),
		repoRoot:    repoRoot,
		registry:    registryPath,
		artifacts:   ArtifactNames,
		ownerEmails: make(map[string]bool),
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CheckPrerequisites verifies git and gh are installed and gh is
// authenticated.
func (f *Flow) CheckPrerequisites(ctx context.Context) error {
	if !gitcli.Installed() {
		return fmt.Errorf("'git' is not installed. Install it first")
	}
	if !ghcli.Installed() {
		return fmt.Errorf("'gh' is not installed. Install it first")
	}
	if err := f.gh.AuthStatus(ctx); err != nil {
		return fmt.Errorf("gh is not authenticated. Run `gh auth login` first")
	}
	return nil
}

// FetchLatestTag refreshes tags from the remote and returns the newest
// semver tag, or "" for a first release.
func (f *Flow) FetchLatestTag(ctx context.Context) (string, error) {
	f.logger.Info("fetching tags from remote")
	if err := f.git.FetchTags(ctx); err != nil {
		return "", err
	}
	tags, err := f.git.Tags(ctx)
	if err != nil {
		return "", err
	}
	return LatestTag(tags), nil
}

// TagExists reports whether the version tag is already taken.
func (f *Flow) TagExists(ctx context.Context, version string) (bool, error) {
	return f.git.TagExists(ctx, version)
}

// DetectChanges diffs the current registry file against its state at the
// latest tag. An empty latestTag means everything counts as added.
func (f *Flow) DetectChanges(ctx context.Context, latestTag string) (*Diff, error) {
	old := &catalog.Registry{}
	if latestTag != "" {
		content, ok := f.git.ShowFileAtRef(ctx, latestTag, f.registry)
		if ok {
			parsed, err := catalog.Parse([]byte(content))
			if err != nil {
				return nil, fmt.Errorf("parse registry at %s: %w", latestTag, err)
			}
			old = parsed
		}
	}

	current, err := catalog.Load(filepath.Join(f.repoRoot, f.registry))
	if err != nil {
		return nil, err
	}
	return DiffApps(old, current)
}

// EditNotes writes the notes to a temp file, opens $EDITOR on it, and
// returns the edited contents.
func (f *Flow) EditNotes(ctx context.Context, notes string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}

	tmp, err := os.CreateTemp("", "obtainium-*-release-notes.md")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(notes); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, editor, tmpPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %s: %w", editor, err)
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(edited)), nil
}

// VerifyArtifacts checks that every export artifact exists on disk.
func (f *Flow) VerifyArtifacts() error {
	for _, name := range f.artifacts {
		path := filepath.Join(f.repoRoot, name)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("expected artifact not found: %s (run the export first)", path)
		}
	}
	return nil
}

// AppCount returns the number of apps in an export artifact, or zero when
// it cannot be read.
func (f *Flow) AppCount(name string) int {
	reg, err := catalog.Load(filepath.Join(f.repoRoot, name))
	if err != nil {
		return 0
	}
	return len(reg.Apps)
}

// createVersionedCopies copies each latest artifact to a versioned
// filename for upload.
func (f *Flow) createVersionedCopies(version string) ([]string, error) {
	var copies []string
	for _, name := range f.artifacts {
		versioned := strings.Replace(name, "latest", version, 1)
		src := filepath.Join(f.repoRoot, name)
		dst := filepath.Join(f.repoRoot, versioned)
		if err := copyFile(src, dst); err != nil {
			return copies, err
		}
		copies = append(copies, dst)
	}
	return copies, nil
}

// Publish commits any pending build output, tags the release, pushes,
// and creates the GitHub release with versioned artifact copies. The
// copies are removed afterwards regardless of outcome.
func (f *Flow) Publish(ctx context.Context, plan *Plan) error {
	clean, err := f.git.StatusClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		f.logger.Info("working tree has changes, committing")
		if err := f.git.AddAll(ctx); err != nil {
			return err
		}
		if err := f.git.Commit(ctx, "release: "+plan.Version); err != nil {
			return err
		}
		if err := f.git.Push(ctx); err != nil {
			return err
		}
	}

	copies, err := f.createVersionedCopies(plan.Version)
	defer func() {
		for _, path := range copies {
			os.Remove(path)
		}
	}()
	if err != nil {
		return err
	}

	f.logger.Info("creating tag", "tag", plan.Version)
	if err := f.git.CreateTag(ctx, plan.Version); err != nil {
		return err
	}
	f.logger.Info("pushing tag", "tag", plan.Version)
	if err := f.git.PushTag(ctx, plan.Version); err != nil {
		return err
	}

	f.logger.Info("creating GitHub release", "tag", plan.Version)
	return f.gh.ReleaseCreate(ctx, plan.Version, plan.Version, plan.Notes, copies)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
