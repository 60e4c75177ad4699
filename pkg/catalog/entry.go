// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Variant names a release profile with its own inclusion rules.
type Variant string

const (
	// VariantStandard is the default export profile.
	VariantStandard Variant = "standard"
	// VariantDualScreen is the export profile for dual-screen devices.
	VariantDualScreen Variant = "dual-screen"
)

// Variants lists every supported export profile.
var Variants = []Variant{VariantStandard, VariantDualScreen}

// IsValid reports whether v names a known export profile.
func (v Variant) IsValid() bool {
	for _, known := range Variants {
		if v == known {
			return true
		}
	}
	return false
}

// entryKeyOrder is the canonical field order for a serialized entry. It matches
// the order the entry builder emits, so freshly added and normalized entries
// produce identical diffs.
var entryKeyOrder = []string{
	"id",
	"url",
	"author",
	"name",
	"preferredApkIndex",
	"additionalSettings",
	"categories",
	"allowIdChange",
	"overrideSource",
	"meta",
}

type (
	// Entry is one row of the registry: a single installable application.
	//
	// Fields mirror the on-disk JSON keys. Absent fields stay at their zero
	// value but are tracked separately (see Has), because validation must
	// distinguish a missing required field from an empty one. Keys the schema
	// does not recognize are preserved verbatim and re-emitted after the known
	// fields on save.
	Entry struct {
		ID                 string
		URL                string
		Author             string
		Name               string
		PreferredApkIndex  int
		AdditionalSettings *Settings
		Categories         []string
		AllowIdChange      bool
		OverrideSource     string
		Meta               *Meta

		present   map[string]bool            // keys seen during unmarshal or set by the builder
		badFields map[string]json.RawMessage // known keys whose value had an unexpected JSON shape
		origOrder []string                   // key order as loaded, for normalization change detection
		extra     []rawField                 // unrecognized keys, in load order
	}

	// rawField is an unparsed key/value pair carried through load/save.
	rawField struct {
		Key string
		Raw json.RawMessage
	}
)

// Has reports whether the named key was present in the loaded JSON (or has
// been set programmatically).
func (e *Entry) Has(key string) bool {
	return e.present[key] || e.badFields[key] != nil
}

// markPresent records that a known field carries a value.
func (e *Entry) markPresent(key string) {
	if e.present == nil {
		e.present = make(map[string]bool)
	}
	e.present[key] = true
}

// BadField returns the raw JSON of a known key whose value did not match the
// expected shape (e.g. a numeric "categories"), or nil when the field parsed.
func (e *Entry) BadField(key string) json.RawMessage {
	return e.badFields[key]
}

// ExtraKeys lists the unrecognized top-level keys carried by this entry.
func (e *Entry) ExtraKeys() []string {
	keys := make([]string, 0, len(e.extra))
	for _, f := range e.extra {
		keys = append(keys, f.Key)
	}
	return keys
}

// DisplayName returns the name used in documentation, honoring the
// meta.nameOverride escape hatch.
func (e *Entry) DisplayName() string {
	if e.Meta != nil {
		if override := e.Meta.String("nameOverride"); override != "" {
			return override
		}
	}
	return e.Name
}

// HomepageURL returns the URL used in documentation, honoring meta.urlOverride.
func (e *Entry) HomepageURL() string {
	if e.Meta != nil {
		if override := e.Meta.String("urlOverride"); override != "" {
			return override
		}
	}
	return e.URL
}

// IncludedIn reports whether the entry belongs to the given export variant.
// A global excludeFromExport flag wins over the per-variant toggles; each
// per-variant toggle defaults to true.
func (e *Entry) IncludedIn(variant Variant) bool {
	if e.Meta == nil {
		return true
	}
	if e.Meta.Bool("excludeFromExport", false) {
		return false
	}
	switch variant {
	case VariantStandard:
		return e.Meta.Bool("includeInStandard", true)
	case VariantDualScreen:
		return e.Meta.Bool("includeInDualScreen", true)
	}
	return true
}

// CloneWithoutMeta returns a copy of the entry with the authoring-only meta
// block removed. Unrecognized keys are carried over.
func (e *Entry) CloneWithoutMeta() *Entry {
	clone := &Entry{
		ID:                 e.ID,
		URL:                e.URL,
		Author:             e.Author,
		Name:               e.Name,
		PreferredApkIndex:  e.PreferredApkIndex,
		AdditionalSettings: e.AdditionalSettings,
		Categories:         append([]string(nil), e.Categories...),
		AllowIdChange:      e.AllowIdChange,
		OverrideSource:     e.OverrideSource,
	}
	clone.present = make(map[string]bool, len(e.present))
	for k, v := range e.present {
		if k == "meta" {
			continue
		}
		clone.present[k] = v
	}
	if e.badFields != nil {
		clone.badFields = make(map[string]json.RawMessage, len(e.badFields))
		for k, v := range e.badFields {
			if k == "meta" {
				continue
			}
			clone.badFields[k] = v
		}
	}
	clone.extra = append([]rawField(nil), e.extra...)
	clone.origOrder = clone.canonicalOrder()
	return clone
}

// SetSettings replaces the entry's additionalSettings payload.
func (e *Entry) SetSettings(s *Settings) {
	e.AdditionalSettings = s
	e.markPresent("additionalSettings")
}

// UnmarshalJSON parses an entry while recording key order, unknown keys, and
// shape mismatches, so that validation can report precisely and saving can
// round-trip losslessly.
func (e *Entry) UnmarshalJSON(data []byte) error {
	fields, err := parseOrderedObject(data)
	if err != nil {
		return fmt.Errorf("parsing entry: %w", err)
	}

	for _, f := range fields {
		e.origOrder = append(e.origOrder, f.Key)
		if err := e.setField(f.Key, f.Raw); err != nil {
			return err
		}
	}
	return nil
}

// setField routes one raw key/value into its typed field. Values that do not
// match the expected shape are stashed in badFields rather than rejected, so a
// single malformed field surfaces as a validation error instead of aborting
// the whole file load.
func (e *Entry) setField(key string, raw json.RawMessage) error {
	assign := func(dst any) {
		if err := json.Unmarshal(raw, dst); err != nil {
			if e.badFields == nil {
				e.badFields = make(map[string]json.RawMessage)
			}
			e.badFields[key] = raw
			return
		}
		e.markPresent(key)
	}

	switch key {
	case "id":
		assign(&e.ID)
	case "url":
		assign(&e.URL)
	case "author":
		assign(&e.Author)
	case "name":
		assign(&e.Name)
	case "preferredApkIndex":
		assign(&e.PreferredApkIndex)
	case "additionalSettings":
		assign(&e.AdditionalSettings)
	case "categories":
		assign(&e.Categories)
	case "allowIdChange":
		assign(&e.AllowIdChange)
	case "overrideSource":
		assign(&e.OverrideSource)
	case "meta":
		assign(&e.Meta)
	default:
		e.extra = append(e.extra, rawField{Key: key, Raw: raw})
	}
	return nil
}

// MarshalJSON emits the entry in canonical key order: known fields first (only
// those present), then any unrecognized keys in their original order.
func (e *Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	writeField := func(key string, value []byte) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyJSON, _ := json.Marshal(key)
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(value)
	}

	for _, key := range entryKeyOrder {
		if raw, ok := e.badFields[key]; ok {
			writeField(key, raw)
			continue
		}
		if !e.present[key] {
			continue
		}
		value, err := e.fieldJSON(key)
		if err != nil {
			return nil, fmt.Errorf("encoding entry field %q: %w", key, err)
		}
		writeField(key, value)
	}

	for _, f := range e.extra {
		writeField(f.Key, f.Raw)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// fieldJSON encodes a single known field by name.
func (e *Entry) fieldJSON(key string) ([]byte, error) {
	switch key {
	case "id":
		return encodeJSON(e.ID)
	case "url":
		return encodeJSON(e.URL)
	case "author":
		return encodeJSON(e.Author)
	case "name":
		return encodeJSON(e.Name)
	case "preferredApkIndex":
		return encodeJSON(e.PreferredApkIndex)
	case "additionalSettings":
		return encodeJSON(e.AdditionalSettings)
	case "categories":
		return encodeJSON(e.Categories)
	case "allowIdChange":
		return encodeJSON(e.AllowIdChange)
	case "overrideSource":
		return encodeJSON(e.OverrideSource)
	case "meta":
		return encodeJSON(e.Meta)
	}
	return nil, fmt.Errorf("unknown field %q", key)
}

// parseOrderedObject walks a JSON object token by token, returning its
// key/value pairs in document order.
func parseOrderedObject(data []byte) ([]rawField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var fields []rawField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}
		fields = append(fields, rawField{Key: key, Raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// encodeJSON marshals without HTML escaping, so URLs with query strings stay
// readable in the registry file.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
