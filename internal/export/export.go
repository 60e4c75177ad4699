// SPDX-License-Identifier: MPL-2.0

// Package export derives the minified per-variant artifacts consumed by the
// installer app.
package export

import (
	"fmt"
	"os"

	"emupack-cli/internal/schema"
	"emupack-cli/pkg/catalog"
)

type (
	// Options configure one export run.
	Options struct {
		Variant catalog.Variant
	}

	// Summary reports what an export produced.
	Summary struct {
		Included int
		Excluded int
	}
)

// Variant filters the registry by the variant's inclusion flags, strips
// authoring-only metadata, hydrates every entry's settings against the schema
// defaults, and returns the minified document. Top-level keys other than
// "apps" ride through untouched.
func Variant(reg *catalog.Registry, opts Options) ([]byte, Summary, error) {
	if !opts.Variant.IsValid() {
		return nil, Summary{}, fmt.Errorf("unknown variant %q", opts.Variant)
	}

	var sum Summary
	entries := make([]*catalog.Entry, 0, len(reg.Apps))
	for _, app := range reg.Apps {
		if !app.IncludedIn(opts.Variant) {
			sum.Excluded++
			continue
		}
		stripped, err := Entry(app)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("exporting %s: %w", app.ID, err)
		}
		entries = append(entries, stripped)
		sum.Included++
	}

	doc, err := reg.WithApps(entries).MarshalJSON()
	if err != nil {
		return nil, Summary{}, fmt.Errorf("encoding export: %w", err)
	}
	return doc, sum, nil
}

// WriteVariant runs Variant and writes the artifact to disk. The single
// output write is the only side effect.
func WriteVariant(reg *catalog.Registry, path string, opts Options) (Summary, error) {
	doc, sum, err := Variant(reg, opts)
	if err != nil {
		return Summary{}, err
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return Summary{}, fmt.Errorf("writing export: %w", err)
	}
	return sum, nil
}

// Entry emits one entry in installer-consumable form: meta dropped, settings
// hydrated to the full per-source set and stringified. Deep links use the
// same shape so a linked install matches an imported one.
func Entry(app *catalog.Entry) (*catalog.Entry, error) {
	sparse := map[string]any{}
	if app.AdditionalSettings != nil {
		var err error
		sparse, err = app.AdditionalSettings.Map()
		if err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
	}

	source := schema.EffectiveSource(schema.Source(app.OverrideSource), app.URL)
	hydrated, err := schema.Resolve(sparse, source).Encode()
	if err != nil {
		return nil, fmt.Errorf("hydrating settings: %w", err)
	}

	stripped := app.CloneWithoutMeta()
	stripped.SetSettings(catalog.NewSettingsRaw(hydrated))
	return stripped, nil
}
