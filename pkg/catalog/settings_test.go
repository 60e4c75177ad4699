// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"encoding/json"
	"testing"
)

func TestSettings_UnmarshalBothForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         string
		wantRaw    string
		wantObject bool
		wantErr    bool
	}{
		{
			name:    "canonical string form",
			in:      `"{\"trackOnly\":false}"`,
			wantRaw: `{"trackOnly":false}`,
		},
		{
			name:       "legacy object form is compacted and flagged",
			in:         "{\n  \"trackOnly\": false\n}",
			wantRaw:    `{"trackOnly":false}`,
			wantObject: true,
		},
		{
			name:    "number rejected",
			in:      `42`,
			wantErr: true,
		},
		{
			name:    "empty rejected",
			in:      ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var s Settings
			err := json.Unmarshal([]byte(tt.in), &s)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%q): %v", tt.in, err)
			}
			if s.Raw() != tt.wantRaw {
				t.Errorf("Raw() = %q, want %q", s.Raw(), tt.wantRaw)
			}
			if s.WasObject() != tt.wantObject {
				t.Errorf("WasObject() = %v, want %v", s.WasObject(), tt.wantObject)
			}
		})
	}
}

func TestSettings_MarshalAlwaysString(t *testing.T) {
	t.Parallel()

	var s Settings
	if err := json.Unmarshal([]byte(`{"apkFilterRegEx":".*arm64.*"}`), &s); err != nil {
		t.Fatal(err)
	}

	out, err := json.Marshal(&s)
	if err != nil {
		t.Fatal(err)
	}
	want := `"{\"apkFilterRegEx\":\".*arm64.*\"}"`
	if string(out) != want {
		t.Errorf("Marshal = %s, want %s", out, want)
	}
}

func TestSettings_Map(t *testing.T) {
	t.Parallel()

	s := NewSettingsRaw(`{"trackOnly":true,"about":"notes"}`)
	m, err := s.Map()
	if err != nil {
		t.Fatal(err)
	}
	if m["trackOnly"] != true {
		t.Errorf("trackOnly = %v, want true", m["trackOnly"])
	}
	if m["about"] != "notes" {
		t.Errorf("about = %v, want notes", m["about"])
	}

	if _, err := NewSettingsRaw(`not json`).Map(); err == nil {
		t.Error("Map() on garbage payload succeeded, want error")
	}

	if _, err := NewSettingsRaw("").Map(); err == nil {
		t.Error("Map() on empty payload succeeded, want error")
	}

	var nilSettings *Settings
	m, err = nilSettings.Map()
	if err != nil || len(m) != 0 {
		t.Errorf("nil settings Map() = %v, %v, want empty map", m, err)
	}
}
