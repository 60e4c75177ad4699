// SPDX-License-Identifier: MPL-2.0

package catalog

type (
	// NewEntryParams collects the inputs for a builder-generated entry.
	NewEntryParams struct {
		ID                string
		URL               string
		Author            string
		Name              string
		PreferredApkIndex int
		Settings          *Settings
		Categories        []string
		AllowIdChange     bool
		OverrideSource    string
		Meta              *Meta
	}
)

// NewEntry constructs a catalog entry in canonical shape: every default field
// populated, keys in canonical order, optional fields omitted when empty.
func NewEntry(p NewEntryParams) *Entry {
	e := &Entry{
		ID:                 p.ID,
		URL:                p.URL,
		Author:             p.Author,
		Name:               p.Name,
		PreferredApkIndex:  p.PreferredApkIndex,
		AdditionalSettings: p.Settings,
		Categories:         p.Categories,
		AllowIdChange:      p.AllowIdChange,
	}

	for _, key := range []string{
		"id", "url", "author", "name", "preferredApkIndex",
		"additionalSettings", "categories", "allowIdChange",
	} {
		e.markPresent(key)
	}

	if p.OverrideSource != "" {
		e.OverrideSource = p.OverrideSource
		e.markPresent("overrideSource")
	}
	if !p.Meta.Empty() {
		e.Meta = p.Meta
		e.markPresent("meta")
	}

	e.origOrder = e.canonicalOrder()
	return e
}
