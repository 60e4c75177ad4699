// SPDX-License-Identifier: MPL-2.0

// Package docgen produces the markdown documentation derived from the
// registry: per-category application tables and the stitched README.
package docgen

import (
	"fmt"
	"sort"
	"strings"

	"emupack-cli/internal/deeplink"
	"emupack-cli/pkg/catalog"
)

// tableHeader is the column layout shared by the README tables and release
// notes.
const tableHeader = "| Application Name | Add to Obtainium | Included in export json? | Included in DS json? |\n" +
	"|------------------|------------------|---------------------------|----------------------|"

// Row renders one table row for an entry.
func Row(app *catalog.Entry) (string, error) {
	link, err := deeplink.ForEntry(app)
	if err != nil {
		return "", err
	}

	nameCell := fmt.Sprintf(`<a href="%s">%s</a>`, app.HomepageURL(), app.DisplayName())
	badgeCell := fmt.Sprintf(`<a href="%s">Add to Obtainium!</a>`, link)

	return fmt.Sprintf("| %s | %s | %s | %s |",
		nameCell, badgeCell,
		includedMark(app, catalog.VariantStandard),
		includedMark(app, catalog.VariantDualScreen)), nil
}

func includedMark(app *catalog.Entry, variant catalog.Variant) string {
	if app.IncludedIn(variant) {
		return "✅"
	}
	return "❌"
}

// CategoryTables renders the registry grouped by category, one section per
// category sorted alphabetically, rows sorted by display name. Entries with
// meta.excludeFromTable are skipped.
func CategoryTables(apps []*catalog.Entry) (string, error) {
	categorized := make(map[string][]*catalog.Entry)
	for _, app := range apps {
		for _, category := range app.Categories {
			categorized[category] = append(categorized[category], app)
		}
	}

	categories := make([]string, 0, len(categorized))
	for category := range categorized {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	sections := []string{"## Applications\n"}
	for _, category := range categories {
		sections = append(sections, fmt.Sprintf("### %s\n", category))
		sections = append(sections, tableHeader)

		group := categorized[category]
		sort.SliceStable(group, func(i, j int) bool {
			return strings.ToLower(group[i].DisplayName()) < strings.ToLower(group[j].DisplayName())
		})

		for _, app := range group {
			if app.Meta.Bool("excludeFromTable", false) {
				continue
			}
			row, err := Row(app)
			if err != nil {
				return "", fmt.Errorf("rendering row for %s: %w", app.ID, err)
			}
			sections = append(sections, row)
		}
		sections = append(sections, "")
	}

	return strings.Join(sections, "\n"), nil
}

// FlatTable renders an ungrouped table sorted by display name, used in
// release notes for changed apps.
func FlatTable(apps []*catalog.Entry) (string, error) {
	if len(apps) == 0 {
		return "", nil
	}

	sorted := append([]*catalog.Entry(nil), apps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].DisplayName()) < strings.ToLower(sorted[j].DisplayName())
	})

	lines := []string{tableHeader}
	for _, app := range sorted {
		row, err := Row(app)
		if err != nil {
			return "", err
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n"), nil
}

// GroupedTable renders per-category sections for the given apps only, used in
// release notes for newly added apps. Apps without categories land in "Other".
func GroupedTable(apps []*catalog.Entry) (string, error) {
	if len(apps) == 0 {
		return "", nil
	}

	categorized := make(map[string][]*catalog.Entry)
	for _, app := range apps {
		cats := app.Categories
		if len(cats) == 0 {
			cats = []string{"Other"}
		}
		for _, category := range cats {
			categorized[category] = append(categorized[category], app)
		}
	}

	categories := make([]string, 0, len(categorized))
	for category := range categorized {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var sections []string
	for _, category := range categories {
		sections = append(sections, fmt.Sprintf("### %s\n", category))
		sections = append(sections, tableHeader)

		group := categorized[category]
		sort.SliceStable(group, func(i, j int) bool {
			return strings.ToLower(group[i].DisplayName()) < strings.ToLower(group[j].DisplayName())
		})
		for _, app := range group {
			row, err := Row(app)
			if err != nil {
				return "", err
			}
			sections = append(sections, row)
		}
		sections = append(sections, "")
	}
	return strings.Join(sections, "\n"), nil
}
