// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KnownMetaKeys is the authoring-metadata vocabulary. Anything else in a meta
// block is almost certainly a typo and gets flagged by validation.
var KnownMetaKeys = map[string]bool{
	"excludeFromExport":   true,
	"excludeFromTable":    true,
	"nameOverride":        true,
	"urlOverride":         true,
	"includeInStandard":   true,
	"includeInDualScreen": true,
}

// MetaTypoFixes maps frequently observed meta-key misspellings to their
// correct form, so validation can suggest the fix instead of just rejecting.
var MetaTypoFixes = map[string]string{
	"exludeFromExport": "excludeFromExport",
	"exludeFromTable":  "excludeFromTable",
	"nameOveride":      "nameOverride",
	"urlOveride":       "urlOverride",
}

// Meta is an entry's authoring-only metadata block. It never reaches the
// exported artifacts. Keys are kept in document order and re-emitted verbatim,
// so normalization never churns meta blocks; typed access goes through the
// Bool/String accessors.
type Meta struct {
	fields []rawField
}

// NewMeta builds a meta block from ordered key/value pairs. Used by the entry
// builder; values must be JSON-marshalable.
func NewMeta(pairs ...MetaPair) (*Meta, error) {
	m := &Meta{}
	for _, p := range pairs {
		raw, err := encodeJSON(p.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding meta key %q: %w", p.Key, err)
		}
		m.fields = append(m.fields, rawField{Key: p.Key, Raw: raw})
	}
	return m, nil
}

// MetaPair is one key/value for NewMeta.
type MetaPair struct {
	Key   string
	Value any
}

// Empty reports whether the meta block carries no keys.
func (m *Meta) Empty() bool {
	return m == nil || len(m.fields) == 0
}

// Keys returns all meta keys in document order.
func (m *Meta) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.fields))
	for _, f := range m.fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Has reports whether the meta block contains the given key.
func (m *Meta) Has(key string) bool {
	if m == nil {
		return false
	}
	for _, f := range m.fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Bool returns the named key as a boolean, or def when the key is absent or
// not a boolean.
func (m *Meta) Bool(key string, def bool) bool {
	if m == nil {
		return def
	}
	for _, f := range m.fields {
		if f.Key != key {
			continue
		}
		var v bool
		if err := json.Unmarshal(f.Raw, &v); err != nil {
			return def
		}
		return v
	}
	return def
}

// String returns the named key as a string, or "" when absent or non-string.
func (m *Meta) String(key string) string {
	if m == nil {
		return ""
	}
	for _, f := range m.fields {
		if f.Key != key {
			continue
		}
		var v string
		if err := json.Unmarshal(f.Raw, &v); err != nil {
			return ""
		}
		return v
	}
	return ""
}

// UnmarshalJSON parses the meta block preserving key order.
func (m *Meta) UnmarshalJSON(data []byte) error {
	fields, err := parseOrderedObject(data)
	if err != nil {
		return fmt.Errorf("parsing meta: %w", err)
	}
	m.fields = fields
	return nil
}

// MarshalJSON re-emits the meta block exactly as loaded.
func (m *Meta) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(f.Key)
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(f.Raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
