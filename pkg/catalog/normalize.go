// SPDX-License-Identifier: MPL-2.0

package catalog

import "slices"

// normalizeDefaults are the fields backfilled when absent from an entry.
var normalizeDefaults = []string{"allowIdChange"}

// Normalize rewrites the entry into canonical field order and backfills
// missing default fields. Returns true when anything changed. Running it on an
// already-normalized entry reports false.
func (e *Entry) Normalize() bool {
	changed := false

	for _, key := range normalizeDefaults {
		if e.Has(key) {
			continue
		}
		// Only allowIdChange today; its default is false.
		e.AllowIdChange = false
		e.markPresent(key)
		changed = true
	}

	// Legacy structured settings are rewritten to the canonical string form.
	if e.AdditionalSettings.WasObject() {
		e.AdditionalSettings = NewSettingsRaw(e.AdditionalSettings.Raw())
		changed = true
	}

	canonical := e.canonicalOrder()
	if !slices.Equal(e.origOrder, canonical) {
		changed = true
	}
	e.origOrder = canonical

	return changed
}

// canonicalOrder computes the key sequence MarshalJSON will emit.
func (e *Entry) canonicalOrder() []string {
	var order []string
	for _, key := range entryKeyOrder {
		if e.Has(key) {
			order = append(order, key)
		}
	}
	for _, f := range e.extra {
		order = append(order, f.Key)
	}
	return order
}

// NormalizeAll normalizes every entry in the registry and returns the number
// of entries that changed.
func (r *Registry) NormalizeAll() int {
	changed := 0
	for _, app := range r.Apps {
		if app.Normalize() {
			changed++
		}
	}
	return changed
}
