// SPDX-License-Identifier: MPL-2.0

// Package validate checks the registry for structural errors and soft
// advisories. Hard errors fail the run; warnings never do.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"emupack-cli/internal/schema"
	"emupack-cli/pkg/catalog"
)

type (
	// Result carries the ordered error and warning lists for one entry or for
	// a whole registry pass.
	Result struct {
		Errors   []string
		Warnings []string
	}
)

// requiredFields must be present on every entry.
var requiredFields = []string{"id", "url", "author", "name"}

// Merge appends another result's findings.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Entry validates a single catalog entry in isolation. The index is used to
// name entries that are missing their name field.
func Entry(e *catalog.Entry, index int) Result {
	var res Result
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("app[%d]", index)
	}

	checkRequiredFields(&res, e, name)
	checkURL(&res, e, name)
	checkOverrideSource(&res, e, name)
	checkApkIndex(&res, e, name)
	checkMeta(&res, e, name)
	checkCategories(&res, e, name)
	checkSettings(&res, e, name)

	return res
}

func checkRequiredFields(res *Result, e *catalog.Entry, name string) {
	for _, field := range requiredFields {
		if !e.Has(field) {
			res.errorf("%s: missing required field '%s'", name, field)
		}
	}
}

func checkURL(res *Result, e *catalog.Entry, name string) {
	if e.URL == "" {
		return
	}
	parsed, err := url.Parse(e.URL)
	if err != nil {
		res.errorf("%s: malformed URL: %v", name, err)
		return
	}
	switch {
	case parsed.Scheme == "":
		res.errorf("%s: URL missing scheme (http/https): %s", name, e.URL)
	case parsed.Scheme != "http" && parsed.Scheme != "https":
		res.errorf("%s: URL has non-http scheme: %s", name, parsed.Scheme)
	}
	if parsed.Host == "" {
		res.errorf("%s: URL missing host: %s", name, e.URL)
	}
}

func checkOverrideSource(res *Result, e *catalog.Entry, name string) {
	source := schema.Source(e.OverrideSource)

	// A present-but-empty overrideSource is an unknown source, not a missing one.
	if e.Has("overrideSource") {
		if !schema.IsKnownSource(source) {
			res.errorf("%s: unknown overrideSource '%s' (valid: %s)",
				name, e.OverrideSource, strings.Join(schema.KnownSourceNames(), ", "))
		}
	} else {
		res.warnf("%s: missing overrideSource (auto-detection may be fragile)", name)
	}

	// A declared source that disagrees with the URL host is usually a
	// copy-paste slip; HTML on either side is a deliberate choice and exempt.
	if e.URL != "" && source != "" {
		detected := schema.DetectSource(e.URL)
		if detected != "" && detected != source &&
			source != schema.SourceHTML && detected != schema.SourceHTML {
			res.warnf("%s: URL host suggests '%s' but overrideSource is '%s'",
				name, detected, source)
		}
	}
}

func checkApkIndex(res *Result, e *catalog.Entry, name string) {
	if raw := e.BadField("preferredApkIndex"); raw != nil {
		res.errorf("%s: preferredApkIndex must be a non-negative integer, got %s", name, raw)
		return
	}
	if e.Has("preferredApkIndex") && e.PreferredApkIndex < 0 {
		res.errorf("%s: preferredApkIndex must be a non-negative integer, got %d",
			name, e.PreferredApkIndex)
	}
}

func checkMeta(res *Result, e *catalog.Entry, name string) {
	if raw := e.BadField("meta"); raw != nil {
		res.errorf("%s: 'meta' should be an object", name)
		return
	}
	if e.Meta == nil {
		return
	}
	for _, key := range e.Meta.Keys() {
		if correct, isTypo := catalog.MetaTypoFixes[key]; isTypo {
			res.errorf("%s: typo in meta key '%s', should be '%s'", name, key, correct)
			continue
		}
		if !catalog.KnownMetaKeys[key] {
			res.errorf("%s: unknown meta key '%s' (typo?)", name, key)
		}
	}
}

func checkCategories(res *Result, e *catalog.Entry, name string) {
	if raw := e.BadField("categories"); raw != nil {
		res.errorf("%s: 'categories' should be a list", name)
	}
}

func checkSettings(res *Result, e *catalog.Entry, name string) {
	if raw := e.BadField("additionalSettings"); raw != nil {
		res.errorf("%s: 'additionalSettings' should be a JSON string", name)
		return
	}
	if !e.Has("additionalSettings") || e.AdditionalSettings == nil {
		return
	}

	if e.AdditionalSettings.WasObject() {
		res.warnf("%s: additionalSettings stored as an object (canonical form is a JSON string; run normalize)", name)
	}

	settings, err := e.AdditionalSettings.Map()
	if err != nil {
		res.errorf("%s: 'additionalSettings' contains invalid JSON: %v", name, err)
		return
	}

	checkRegexSettings(res, settings, name)
	checkIntermediateLinks(res, settings, name)
	checkDeprecatedKeys(res, settings, name)
	checkCrossSourceKeys(res, e, settings, name)
}

func checkRegexSettings(res *Result, settings map[string]any, name string) {
	for _, key := range schema.RegexKeys() {
		value, ok := settings[key].(string)
		if !ok || value == "" {
			continue
		}
		if _, err := regexp.Compile(value); err != nil {
			res.errorf("%s: invalid regex in '%s': %v (pattern: %q)", name, key, err, value)
		}
	}
}

func checkIntermediateLinks(res *Result, settings map[string]any, name string) {
	steps, _ := settings["intermediateLink"].([]any)
	for i, step := range steps {
		stepMap, ok := step.(map[string]any)
		if !ok {
			continue
		}
		pattern, ok := stepMap["customLinkFilterRegex"].(string)
		if !ok || pattern == "" {
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			res.errorf("%s: invalid regex in 'intermediateLink[%d].customLinkFilterRegex': %v (pattern: %q)",
				name, i, err, pattern)
		}
	}
}

func checkDeprecatedKeys(res *Result, settings map[string]any, name string) {
	deprecated := schema.Deprecated()

	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if replacement, ok := deprecated[key]; ok {
			res.warnf("%s: deprecated key '%s', use '%s' instead", name, key, replacement)
		}
	}
}

func checkCrossSourceKeys(res *Result, e *catalog.Entry, settings map[string]any, name string) {
	effective := schema.EffectiveSource(schema.Source(e.OverrideSource), e.URL)
	if effective == "" {
		return
	}
	valid := schema.ValidKeysFor(effective)

	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if valid[key] {
			continue
		}
		owners := schema.SourcesOwning(key, effective)
		if len(owners) == 0 {
			// Key unknown to the schema entirely: tolerated for forward
			// compatibility with the installer's evolving settings.
			continue
		}
		names := make([]string, len(owners))
		for i, o := range owners {
			names[i] = string(o)
		}
		res.warnf("%s: additionalSettings key '%s' is for %s, not %s",
			name, key, strings.Join(names, "/"), effective)
	}
}

// DuplicateIDs reports IDs used by more than one entry visible in the given
// variant. Entries excluded from the variant are invisible to its check, so an
// ID may legitimately repeat across disjoint variants.
func DuplicateIDs(apps []*catalog.Entry, variant catalog.Variant) []string {
	var errors []string
	seen := make(map[string]string)

	for _, app := range apps {
		if !app.IncludedIn(variant) {
			continue
		}
		if app.ID == "" {
			continue
		}
		name := app.Name
		if name == "" {
			name = "unknown"
		}
		if firstName, dup := seen[app.ID]; dup {
			errors = append(errors, fmt.Sprintf(
				"Duplicate ID '%s' in %s variant: '%s' and '%s'",
				app.ID, variant, firstName, name))
		} else {
			seen[app.ID] = name
		}
	}
	return errors
}

// Registry runs the full validation pass: every entry in isolation, then the
// per-variant duplicate-ID check.
func Registry(reg *catalog.Registry) Result {
	var res Result
	for i, app := range reg.Apps {
		res.Merge(Entry(app, i))
	}
	for _, variant := range catalog.Variants {
		res.Errors = append(res.Errors, DuplicateIDs(reg.Apps, variant)...)
	}
	return res
}
