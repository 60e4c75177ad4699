// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Registry is the parsed applications.json document. Top-level keys other
// than "apps" are preserved in document order and written back untouched.
type Registry struct {
	Apps []*Entry

	before []rawField // top-level keys appearing before "apps"
	after  []rawField // top-level keys appearing after "apps"
	hasApp bool
}

// Load reads and parses a registry file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes a registry document from raw JSON.
func Parse(data []byte) (*Registry, error) {
	fields, err := parseOrderedObject(data)
	if err != nil {
		return nil, err
	}

	reg := &Registry{}
	for _, f := range fields {
		if f.Key != "apps" {
			if reg.hasApp {
				reg.after = append(reg.after, f)
			} else {
				reg.before = append(reg.before, f)
			}
			continue
		}
		reg.hasApp = true
		if err := json.Unmarshal(f.Raw, &reg.Apps); err != nil {
			return nil, fmt.Errorf("parsing apps array: %w", err)
		}
	}

	if !reg.hasApp {
		return nil, fmt.Errorf("missing 'apps' key in registry document")
	}
	return reg, nil
}

// MarshalJSON emits the document with "apps" in its original position among
// any preserved top-level keys.
func (r *Registry) MarshalJSON() ([]byte, error) {
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

	for _, f := range r.before {
		writeField(f.Key, f.Raw)
	}

	apps, err := encodeJSON(r.Apps)
	if err != nil {
		return nil, fmt.Errorf("encoding apps: %w", err)
	}
	writeField("apps", apps)

	for _, f := range r.after {
		writeField(f.Key, f.Raw)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Save writes the registry pretty-printed with a trailing newline, matching
// the repository's hand-edited formatting.
func (r *Registry) Save(path string) error {
	compact, err := encodeJSON(r)
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "  "); err != nil {
		return fmt.Errorf("formatting registry: %w", err)
	}
	pretty.WriteByte('\n')

	if err := os.WriteFile(path, pretty.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

// WithApps returns a shallow copy of the registry carrying the given apps.
// The top-level keys surrounding "apps" are kept, so derived documents
// round-trip everything the source document carried.
func (r *Registry) WithApps(apps []*Entry) *Registry {
	clone := *r
	clone.Apps = apps
	return &clone
}

// FindByID returns the entry with the given package id, or nil.
func (r *Registry) FindByID(id string) *Entry {
	for _, app := range r.Apps {
		if app.ID == id {
			return app
		}
	}
	return nil
}
