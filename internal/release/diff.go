// SPDX-License-Identifier: MPL-2.0

package release

import (
	"encoding/json"
	"sort"

	"emupack-cli/pkg/catalog"
)

// Diff describes app-level changes between two snapshots of the curated
// registry. Removed entries carry the old snapshot's version.
type Diff struct {
	Added   []*catalog.Entry
	Changed []*catalog.Entry
	Removed []*catalog.Entry
}

// appsByID indexes a registry's apps by ID.
func appsByID(reg *catalog.Registry) map[string]*catalog.Entry {
	byID := make(map[string]*catalog.Entry, len(reg.Apps))
	for _, app := range reg.Apps {
		byID[app.ID] = app
	}
	return byID
}

// comparableForm renders an entry as sorted-key JSON with meta stripped
// and string-encoded settings decoded, so formatting-only edits do not
// register as changes.
func comparableForm(e *catalog.Entry) (string, error) {
	raw, err := e.MarshalJSON()
	if err != nil {
		return "", err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", err
	}
	delete(fields, "meta")

	if encoded, isString := fields["additionalSettings"].(string); isString {
		var decoded map[string]any
		if json.Unmarshal([]byte(encoded), &decoded) == nil {
			fields["additionalSettings"] = decoded
		}
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DiffApps computes added, changed, and removed apps between two
// registries, each list sorted by app ID.
func DiffApps(old, current *catalog.Registry) (*Diff, error) {
	oldByID := appsByID(old)
	newByID := appsByID(current)

	diff := &Diff{}

	var sharedIDs []string
	for id, app := range newByID {
		if _, existed := oldByID[id]; existed {
			sharedIDs = append(sharedIDs, id)
		} else {
			diff.Added = append(diff.Added, app)
		}
	}
	for id, app := range oldByID {
		if _, kept := newByID[id]; !kept {
			diff.Removed = append(diff.Removed, app)
		}
	}

	sort.Strings(sharedIDs)
	for _, id := range sharedIDs {
		oldForm, err := comparableForm(oldByID[id])
		if err != nil {
			return nil, err
		}
		newForm, err := comparableForm(newByID[id])
		if err != nil {
			return nil, err
		}
		if oldForm != newForm {
			diff.Changed = append(diff.Changed, newByID[id])
		}
	}

	sortByID(diff.Added)
	sortByID(diff.Removed)
	return diff, nil
}

func sortByID(apps []*catalog.Entry) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
}
