// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParseEntry(t *testing.T, data string) *Entry {
	t.Helper()
	var e Entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	return &e
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestEntry_RoundTripPreservesUnknownKeys(t *testing.T) {
	t.Parallel()

	in := `{"id":"org.example.app","url":"https://github.com/foo/bar",` +
		`"author":"Foo","name":"Bar","futureKey":{"nested":[1,2]},"anotherOne":"x"}`

	e := mustParseEntry(t, in)

	if got := e.ExtraKeys(); !cmp.Equal(got, []string{"futureKey", "anotherOne"}) {
		t.Errorf("ExtraKeys() = %v, want [futureKey anotherOne]", got)
	}

	out := mustMarshal(t, e)
	if out != in {
		t.Errorf("round trip changed the document:\n in: %s\nout: %s", in, out)
	}
}

func TestEntry_MarshalUsesCanonicalOrder(t *testing.T) {
	t.Parallel()

	// Known keys deliberately scrambled; marshal must reorder them.
	in := `{"name":"Bar","author":"Foo","url":"https://github.com/foo/bar",` +
		`"id":"org.example.app","allowIdChange":false}`
	want := `{"id":"org.example.app","url":"https://github.com/foo/bar",` +
		`"author":"Foo","name":"Bar","allowIdChange":false}`

	e := mustParseEntry(t, in)
	if got := mustMarshal(t, e); got != want {
		t.Errorf("marshal order:\n got: %s\nwant: %s", got, want)
	}
}

func TestEntry_MarshalDoesNotEscapeURLs(t *testing.T) {
	t.Parallel()

	e := mustParseEntry(t, `{"id":"a","url":"https://example.com/dl?a=1&b=2","author":"x","name":"y"}`)
	out := mustMarshal(t, e)
	if strings.Contains(out, `&`) {
		t.Errorf("marshal HTML-escaped the URL: %s", out)
	}
	if !strings.Contains(out, "a=1&b=2") {
		t.Errorf("URL query lost in marshal: %s", out)
	}
}

func TestEntry_BadFieldCapture(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"numeric categories", `{"id":"a","categories":42}`, "categories"},
		{"string apk index", `{"id":"a","preferredApkIndex":"first"}`, "preferredApkIndex"},
		{"array meta", `{"id":"a","meta":[1]}`, "meta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := mustParseEntry(t, tt.doc)

			if e.BadField(tt.field) == nil {
				t.Fatalf("BadField(%q) = nil, want raw value", tt.field)
			}
			if !e.Has(tt.field) {
				t.Errorf("Has(%q) = false, want true for a malformed-but-present field", tt.field)
			}

			// The raw value must survive a save untouched.
			out := mustMarshal(t, e)
			var back map[string]json.RawMessage
			if err := json.Unmarshal([]byte(out), &back); err != nil {
				t.Fatalf("re-parse marshaled entry: %v", err)
			}
			if _, ok := back[tt.field]; !ok {
				t.Errorf("malformed field %q dropped on marshal: %s", tt.field, out)
			}
		})
	}
}

func TestEntry_Has(t *testing.T) {
	t.Parallel()

	e := mustParseEntry(t, `{"id":"a","url":"","allowIdChange":false}`)

	tests := []struct {
		key  string
		want bool
	}{
		{"id", true},
		{"url", true}, // present even though empty
		{"allowIdChange", true},
		{"author", false},
		{"meta", false},
	}

	for _, tt := range tests {
		if got := e.Has(tt.key); got != tt.want {
			t.Errorf("Has(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestEntry_DisplayNameAndHomepage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		wantName string
		wantURL  string
	}{
		{
			name:     "no meta",
			doc:      `{"id":"a","url":"https://github.com/foo/bar","name":"Dolphin"}`,
			wantName: "Dolphin",
			wantURL:  "https://github.com/foo/bar",
		},
		{
			name:     "overrides win",
			doc:      `{"id":"a","url":"https://github.com/foo/bar","name":"Dolphin","meta":{"nameOverride":"Dolphin MMJR2","urlOverride":"https://dolphin-emu.org"}}`,
			wantName: "Dolphin MMJR2",
			wantURL:  "https://dolphin-emu.org",
		},
		{
			name:     "empty overrides fall through",
			doc:      `{"id":"a","url":"https://github.com/foo/bar","name":"Dolphin","meta":{"nameOverride":"","urlOverride":""}}`,
			wantName: "Dolphin",
			wantURL:  "https://github.com/foo/bar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := mustParseEntry(t, tt.doc)
			if got := e.DisplayName(); got != tt.wantName {
				t.Errorf("DisplayName() = %q, want %q", got, tt.wantName)
			}
			if got := e.HomepageURL(); got != tt.wantURL {
				t.Errorf("HomepageURL() = %q, want %q", got, tt.wantURL)
			}
		})
	}
}

func TestEntry_IncludedIn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		doc            string
		wantStandard   bool
		wantDualScreen bool
	}{
		{
			name:           "no meta includes everywhere",
			doc:            `{"id":"a"}`,
			wantStandard:   true,
			wantDualScreen: true,
		},
		{
			name:           "excludeFromExport wins over per-variant toggles",
			doc:            `{"id":"a","meta":{"excludeFromExport":true,"includeInStandard":true}}`,
			wantStandard:   false,
			wantDualScreen: false,
		},
		{
			name:           "standard only",
			doc:            `{"id":"a","meta":{"includeInDualScreen":false}}`,
			wantStandard:   true,
			wantDualScreen: false,
		},
		{
			name:           "dual-screen only",
			doc:            `{"id":"a","meta":{"includeInStandard":false}}`,
			wantStandard:   false,
			wantDualScreen: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := mustParseEntry(t, tt.doc)
			if got := e.IncludedIn(VariantStandard); got != tt.wantStandard {
				t.Errorf("IncludedIn(standard) = %v, want %v", got, tt.wantStandard)
			}
			if got := e.IncludedIn(VariantDualScreen); got != tt.wantDualScreen {
				t.Errorf("IncludedIn(dual-screen) = %v, want %v", got, tt.wantDualScreen)
			}
		})
	}
}

func TestEntry_CloneWithoutMeta(t *testing.T) {
	t.Parallel()

	e := mustParseEntry(t, `{"id":"a","url":"https://github.com/foo/bar","author":"Foo",`+
		`"name":"Bar","allowIdChange":true,"meta":{"excludeFromTable":true},"extraKey":7}`)

	clone := e.CloneWithoutMeta()

	if clone.Has("meta") {
		t.Error("clone still reports a meta field")
	}
	if !clone.AllowIdChange {
		t.Error("clone lost allowIdChange")
	}
	if got := clone.ExtraKeys(); !cmp.Equal(got, []string{"extraKey"}) {
		t.Errorf("clone ExtraKeys() = %v, want [extraKey]", got)
	}

	out := mustMarshal(t, clone)
	if strings.Contains(out, "meta") {
		t.Errorf("meta leaked into marshaled clone: %s", out)
	}
	if !strings.Contains(out, `"extraKey":7`) {
		t.Errorf("unknown key missing from marshaled clone: %s", out)
	}

	// Original untouched.
	if !e.Has("meta") {
		t.Error("CloneWithoutMeta mutated the original entry")
	}
}

func TestVariant_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		variant Variant
		want    bool
	}{
		{VariantStandard, true},
		{VariantDualScreen, true},
		{"", false},
		{"Standard", false},
		{"dualscreen", false},
	}

	for _, tt := range tests {
		if got := tt.variant.IsValid(); got != tt.want {
			t.Errorf("Variant(%q).IsValid() = %v, want %v", tt.variant, got, tt.want)
		}
	}
}
