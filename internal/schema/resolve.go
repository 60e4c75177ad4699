// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"bytes"
	"encoding/json"
	"sort"
)

type (
	// Resolved is a fully-populated settings object in canonical key order:
	// every schema key applicable to the entry's source, with sparse input
	// values taking precedence over defaults.
	Resolved struct {
		keys   []string
		values map[string]any
	}
)

// Resolve merges a sparse settings mapping with the schema defaults for the
// effective source. The result contains every applicable key exactly once, in
// the canonical order defined by the schema table. Sparse keys unknown to the
// schema are carried through after the known ones, preserving forward
// compatibility with the installer's own schema evolution.
//
// Resolve is pure: the inputs are never mutated and list/map defaults are
// deep-copied per call so resolved objects never alias each other.
func Resolve(sparse map[string]any, source Source) *Resolved {
	r := &Resolved{values: make(map[string]any)}

	applies := func(s Setting) bool {
		if s.Sources == nil {
			return true
		}
		for _, src := range s.Sources {
			if src == source {
				return true
			}
		}
		return false
	}

	for _, s := range settings {
		if !applies(s) {
			continue
		}
		value, ok := sparse[s.Key]
		if !ok {
			value = deepCopyValue(s.Default)
		}
		r.keys = append(r.keys, s.Key)
		r.values[s.Key] = value
	}

	// Unknown sparse keys are carried through after the known ones. JSON maps
	// have no order, so sorted order keeps the output deterministic.
	var unknown []string
	for key := range sparse {
		if _, seen := r.values[key]; !seen {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		r.keys = append(r.keys, key)
		r.values[key] = sparse[key]
	}

	return r
}

// Keys returns the resolved key order.
func (r *Resolved) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Get returns the resolved value for a key.
func (r *Resolved) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of resolved keys.
func (r *Resolved) Len() int {
	return len(r.keys)
}

// MarshalJSON emits the resolved object compactly in canonical key order,
// without HTML escaping.
func (r *Resolved) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		var valBuf bytes.Buffer
		enc := json.NewEncoder(&valBuf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(r.values[key]); err != nil {
			return nil, err
		}
		buf.Write(bytes.TrimRight(valBuf.Bytes(), "\n"))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode returns the canonical string form used for additionalSettings.
func (r *Resolved) Encode() (string, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// deepCopyValue copies mutable (slice/map) default values so resolved objects
// never share backing storage with the schema table or each other.
func deepCopyValue(v any) any {
	switch typed := v.(type) {
	case []any:
		out := make([]any, len(typed))
		for i, elem := range typed {
			out[i] = deepCopyValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, elem := range typed {
			out[k] = deepCopyValue(elem)
		}
		return out
	default:
		return v
	}
}
