// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Settings holds an entry's additionalSettings blob.
//
// The registry's canonical on-disk form is a JSON-encoded string, matching
// what the installer app imports. Older revisions of the file stored a
// structured object instead; those are accepted at read time and rewritten to
// the string form on the next save, which is how the two historical
// representations are reconciled.
type Settings struct {
	raw       string // compact JSON text of the settings object
	wasObject bool   // loaded from the structured (non-canonical) representation
}

// NewSettings encodes a settings map into its canonical form. Key order
// follows Go's deterministic map-key sort, which is acceptable for
// builder-generated entries; resolver output uses schema order instead.
func NewSettings(values map[string]any) (*Settings, error) {
	raw, err := encodeJSON(values)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return &Settings{raw: string(raw)}, nil
}

// NewSettingsRaw wraps an already-encoded settings string without inspecting it.
func NewSettingsRaw(encoded string) *Settings {
	return &Settings{raw: encoded}
}

// Raw returns the canonical JSON-string payload.
func (s *Settings) Raw() string {
	if s == nil {
		return ""
	}
	return s.raw
}

// WasObject reports whether the settings were loaded from the legacy
// structured representation rather than the canonical string form.
func (s *Settings) WasObject() bool {
	return s != nil && s.wasObject
}

// Map decodes the settings into a generic map. Returns an error when the
// payload is not a JSON object; an empty string is not valid JSON and fails
// the same way.
func (s *Settings) Map() (map[string]any, error) {
	if s == nil {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s.raw), &m); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return m, nil
}

// UnmarshalJSON accepts both representations: a JSON string containing an
// encoded object (canonical) or a structured object (legacy, flagged).
func (s *Settings) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty additionalSettings value")
	}

	switch trimmed[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return err
		}
		s.raw = encoded
		return nil
	case '{':
		compact := &bytes.Buffer{}
		if err := json.Compact(compact, trimmed); err != nil {
			return err
		}
		s.raw = compact.String()
		s.wasObject = true
		return nil
	}
	return fmt.Errorf("additionalSettings must be a JSON string or object")
}

// MarshalJSON always emits the canonical string form.
func (s *Settings) MarshalJSON() ([]byte, error) {
	return encodeJSON(s.raw)
}
