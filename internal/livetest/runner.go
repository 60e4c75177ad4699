// SPDX-License-Identifier: MPL-2.0

package livetest

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"emupack-cli/internal/schema"
	"emupack-cli/pkg/catalog"
)

type (
	// Runner drives the per-entry state machine: resolve-source,
	// fetch-candidates, filter/sort, extract-version.
	Runner struct {
		github *GitHubClient
		gitea  *GiteaClient
		fetch  *fetcher
		logger *log.Logger
	}

	// RunnerOption configures a Runner during construction.
	RunnerOption func(*Runner)
)

// WithGitHubClient replaces the GitHub API client.
func WithGitHubClient(c *GitHubClient) RunnerOption {
	return func(r *Runner) { r.github = c }
}

// WithGiteaClient replaces the Gitea/Codeberg API client.
func WithGiteaClient(c *GiteaClient) RunnerOption {
	return func(r *Runner) { r.gitea = c }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a Runner with production defaults. A GITHUB_TOKEN, when
// available, should be injected via WithGitHubClient(NewGitHubClient(WithGitHubToken(...))).
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		github: NewGitHubClient(),
		gitea:  NewGiteaClient(),
		fetch:  newFetcher(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TestEntry live-tests a single catalog entry. Network and parse failures are
// converted into a failed Result, never propagated.
func (r *Runner) TestEntry(ctx context.Context, app *catalog.Entry) Result {
	source := schema.EffectiveSource(schema.Source(app.OverrideSource), app.URL)

	result := Result{
		AppName: app.Name,
		AppID:   app.ID,
		Source:  source,
		URL:     app.URL,
	}

	settings, err := decodeSettings(app)
	if err != nil {
		result.failf("Cannot parse additionalSettings JSON")
		return result
	}

	start := time.Now()
	r.logger.Debug("testing entry", "app", app.Name, "source", source)

	switch source {
	case schema.SourceGitHub:
		r.testGitHub(ctx, app, settings, &result)
	case schema.SourceCodeberg:
		r.testGitea(ctx, app, settings, &result)
	case schema.SourceHTML, schema.SourceDirectAPKLink:
		r.testHTML(ctx, app, settings, &result)
	default:
		result.Passed = true
		result.warnf("Skipped: source type '%s' not yet supported", source)
	}

	result.DurationMS = time.Since(start).Milliseconds()
	return result
}

// decodeSettings parses the entry's additionalSettings into the typed view.
func decodeSettings(app *catalog.Entry) (Settings, error) {
	if app.AdditionalSettings == nil {
		return Settings{}, nil
	}
	m, err := app.AdditionalSettings.Map()
	if err != nil {
		return nil, err
	}
	return Settings(m), nil
}

// testGitHub checks an entry against the GitHub Releases API.
func (r *Runner) testGitHub(ctx context.Context, app *catalog.Entry, settings Settings, result *Result) {
	owner, repo, _, err := ParseOwnerRepo(app.URL)
	if err != nil {
		result.failf("%v", err)
		return
	}

	releases, remaining, err := r.github.ListReleases(ctx, owner, repo)
	if err != nil {
		result.failf("%v", err)
		return
	}
	if remaining != quotaUnknown && remaining > 0 && remaining < lowQuotaThreshold {
		result.warnf("GitHub API rate limit low: %d remaining", remaining)
	}
	if len(releases) == 0 {
		result.failf("No releases found")
		return
	}

	titleRe, notesRe, err := compileReleaseFilters(settings)
	if err != nil {
		result.failf("%v", err)
		return
	}

	target, apkURLs, err := findReleaseWithAPKs(releases, settings, titleRe, notesRe)
	if err != nil {
		result.failf("%v", err)
		return
	}
	if target == nil {
		prereleaseState := "off"
		if settings.Bool("includePrereleases") {
			prereleaseState = "on"
		}
		filters := filterContext(
			[2]string{"titleFilter", settings.String("filterReleaseTitlesByRegEx")},
			[2]string{"apkFilter", settings.String("apkFilterRegEx")},
		)
		result.failf("No releases with matching APK assets found (checked %d releases, prereleases=%s%s)",
			len(releases), prereleaseState, filters)
		return
	}

	finishReleaseResult(app, settings, target, apkURLs, result)
}

// testGitea checks an entry against a Gitea-compatible forge (Codeberg).
func (r *Runner) testGitea(ctx context.Context, app *catalog.Entry, settings Settings, result *Result) {
	owner, repo, host, err := ParseOwnerRepo(app.URL)
	if err != nil {
		result.failf("%v", err)
		return
	}

	releases, err := r.gitea.ListReleases(ctx, host, owner, repo)
	if err != nil {
		result.failf("%v", err)
		return
	}
	if len(releases) == 0 {
		result.failf("No releases found")
		return
	}

	target, apkURLs, err := findReleaseWithAPKs(releases, settings, nil, nil)
	if err != nil {
		result.failf("%v", err)
		return
	}
	if target == nil {
		result.failf("No releases with matching APK assets")
		return
	}

	finishReleaseResult(app, settings, target, apkURLs, result)
}

// finishReleaseResult applies version extraction and bounds checks shared by
// the release-API sources, then marks the result passed.
func finishReleaseResult(app *catalog.Entry, settings Settings, target *Release, apkURLs []string, result *Result) {
	version, warning := extractVersion(versionOf(target), settings)
	if warning != "" {
		result.warnf("%s", warning)
	}
	if w := checkAPKIndex(app.PreferredApkIndex, len(apkURLs)); w != "" {
		result.warnf("%s", w)
	}

	result.Passed = true
	result.Version = version
	result.storeAPKs(apkURLs)
}

// testHTML checks an entry via the generic page-scrape strategy.
func (r *Runner) testHTML(ctx context.Context, app *catalog.Entry, settings Settings, result *Result) {
	headers := settings.RequestHeaders()

	current, err := r.followIntermediateLinks(ctx, app.URL, settings.LinkSteps(), headers)
	if err != nil {
		result.failf("%v", err)
		return
	}

	resp, err := r.fetch.get(ctx, current, headers)
	if err != nil {
		result.failf("Failed to fetch final URL (%s): %v", current, err)
		return
	}

	links := extractLinks(resp.Body, resp.FinalURL)

	customRegex := settings.String("customLinkFilterRegex")
	var apkLinks []string
	if customRegex != "" {
		apkLinks, err = filterLinksByRegex(links, customRegex)
		if err != nil {
			result.failf("%v", err)
			return
		}
	} else {
		apkLinks = filterLinksByExtension(links)
	}

	apkLinks, err = applyAPKFilter(apkLinks, settings)
	if err != nil {
		result.failf("%v", err)
		return
	}

	trackOnly := settings.Bool("trackOnly")
	if len(apkLinks) == 0 && !trackOnly {
		filters := filterContext(
			[2]string{"customLinkFilterRegex", customRegex},
			[2]string{"apkFilterRegEx", settings.String("apkFilterRegEx")},
		)
		result.failf("No APK links found on page (%s%s, %d total links on page)",
			current, filters, len(links))
		return
	}

	version := r.extractPageVersion(resp.Body, apkLinks, settings, result)
	if version == "" {
		if pseudo := settings.String("defaultPseudoVersioningMethod"); pseudo != "" {
			version = fmt.Sprintf("<pseudo:%s>", pseudo)
		} else {
			result.warnf("No version extracted (no regex match, no pseudo-method)")
		}
	}

	if w := checkAPKIndex(app.PreferredApkIndex, len(apkLinks)); w != "" {
		result.warnf("%s", w)
	}

	result.Passed = true
	result.Version = version
	result.storeAPKs(apkLinks)
}

// extractPageVersion applies versionExtractionRegEx to the page body or to
// the chosen (last) artifact link.
func (r *Runner) extractPageVersion(body []byte, apkLinks []string, settings Settings, result *Result) string {
	if settings.String("versionExtractionRegEx") == "" {
		return ""
	}

	var searchText string
	switch {
	case settings.Bool("versionExtractWholePage"):
		searchText = string(body)
	case len(apkLinks) > 0:
		searchText = apkLinks[len(apkLinks)-1]
	}

	version, warning := extractVersion(searchText, settings)
	if warning != "" {
		result.warnf("%s", warning)
	}
	if version == searchText && settings.Bool("versionExtractWholePage") {
		// A whole-page non-match would otherwise claim the page as version.
		return ""
	}
	return version
}

// compileReleaseFilters compiles the optional title/notes regex filters.
func compileReleaseFilters(settings Settings) (titleRe, notesRe *regexp.Regexp, err error) {
	if pattern := settings.String("filterReleaseTitlesByRegEx"); pattern != "" {
		titleRe, err = regexp.Compile(pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("filterReleaseTitlesByRegEx: %w", err)
		}
	}
	if pattern := settings.String("filterReleaseNotesByRegEx"); pattern != "" {
		notesRe, err = regexp.Compile(pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("filterReleaseNotesByRegEx: %w", err)
		}
	}
	return titleRe, notesRe, nil
}

// FilterApps narrows the entry list by exact id or case-insensitive name
// substring. An empty filter keeps everything.
func FilterApps(apps []*catalog.Entry, nameFilter, idFilter string) []*catalog.Entry {
	switch {
	case idFilter != "":
		var kept []*catalog.Entry
		for _, app := range apps {
			if app.ID == idFilter {
				kept = append(kept, app)
			}
		}
		return kept
	case nameFilter != "":
		needle := strings.ToLower(nameFilter)
		var kept []*catalog.Entry
		for _, app := range apps {
			if strings.Contains(strings.ToLower(app.Name), needle) {
				kept = append(kept, app)
			}
		}
		return kept
	}
	return apps
}

// Run tests every entry in order, invoking each after every result so callers
// can stream progress output.
func (r *Runner) Run(ctx context.Context, apps []*catalog.Entry, each func(Result)) []Result {
	results := make([]Result, 0, len(apps))
	for _, app := range apps {
		result := r.TestEntry(ctx, app)
		results = append(results, result)
		if each != nil {
			each(result)
		}
	}
	return results
}
