// SPDX-License-Identifier: MPL-2.0

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emupack-cli/pkg/catalog"
)

const testRegistry = `{"apps":[
	{
		"id": "org.dolphinemu.dolphinemu",
		"url": "https://github.com/dolphin-emu/dolphin",
		"author": "Dolphin Team",
		"name": "Dolphin",
		"additionalSettings": "{\"trackOnly\":true}",
		"categories": ["Emulator"],
		"allowIdChange": false,
		"overrideSource": "GitHub",
		"meta": {"excludeFromTable": true}
	},
	{
		"id": "com.example.dualonly",
		"url": "https://example.com/app",
		"author": "Example",
		"name": "Dual Only",
		"additionalSettings": "{}",
		"categories": ["Utilities"],
		"allowIdChange": false,
		"overrideSource": "HTML",
		"meta": {"includeInStandard": false}
	},
	{
		"id": "com.example.hidden",
		"url": "https://example.com/hidden",
		"author": "Example",
		"name": "Hidden",
		"additionalSettings": "{}",
		"categories": ["Utilities"],
		"allowIdChange": false,
		"overrideSource": "HTML",
		"meta": {"excludeFromExport": true}
	}
]}`

func loadTestRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	reg, err := catalog.Parse([]byte(testRegistry))
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestVariant_Filtering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		variant      catalog.Variant
		wantIncluded int
		wantExcluded int
		wantIDs      []string
	}{
		{catalog.VariantStandard, 1, 2, []string{"org.dolphinemu.dolphinemu"}},
		{catalog.VariantDualScreen, 2, 1, []string{"org.dolphinemu.dolphinemu", "com.example.dualonly"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			t.Parallel()
			doc, sum, err := Variant(loadTestRegistry(t), Options{Variant: tt.variant})
			if err != nil {
				t.Fatal(err)
			}
			if sum.Included != tt.wantIncluded || sum.Excluded != tt.wantExcluded {
				t.Errorf("summary = %+v, want %d/%d", sum, tt.wantIncluded, tt.wantExcluded)
			}

			var got struct {
				Apps []struct {
					ID string `json:"id"`
				} `json:"apps"`
			}
			if err := json.Unmarshal(doc, &got); err != nil {
				t.Fatalf("export output is not valid JSON: %v", err)
			}
			ids := make([]string, len(got.Apps))
			for i, a := range got.Apps {
				ids[i] = a.ID
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("exported ids = %v, want %v", ids, tt.wantIDs)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Errorf("exported ids = %v, want %v", ids, tt.wantIDs)
					break
				}
			}
		})
	}
}

func TestVariant_UnknownVariant(t *testing.T) {
	t.Parallel()

	if _, _, err := Variant(loadTestRegistry(t), Options{Variant: "nightly"}); err == nil {
		t.Fatal("Variant accepted an unknown profile")
	}
}

func TestVariant_StripsMetaAndHydratesSettings(t *testing.T) {
	t.Parallel()

	doc, _, err := Variant(loadTestRegistry(t), Options{Variant: catalog.VariantStandard})
	if err != nil {
		t.Fatal(err)
	}
	out := string(doc)

	if strings.Contains(out, "meta") {
		t.Errorf("meta block leaked into export: %s", out)
	}
	if strings.Contains(out, "\n") {
		t.Error("export output is not minified")
	}

	// Settings are hydrated to the full per-source set as an encoded string.
	var got struct {
		Apps []struct {
			Settings string `json:"additionalSettings"`
		} `json:"apps"`
	}
	if err := json.Unmarshal(doc, &got); err != nil {
		t.Fatal(err)
	}
	var settings map[string]any
	if err := json.Unmarshal([]byte(got.Apps[0].Settings), &settings); err != nil {
		t.Fatalf("additionalSettings is not an encoded JSON object: %v", err)
	}
	if settings["trackOnly"] != true {
		t.Errorf("sparse value lost in hydration: %v", settings["trackOnly"])
	}
	if _, ok := settings["fallbackToOlderReleases"]; !ok {
		t.Errorf("schema default missing from hydrated settings: %v", settings)
	}
	if _, ok := settings["intermediateLink"]; ok {
		t.Error("scrape-only key hydrated for a GitHub entry")
	}
}

func TestWriteVariant(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "obtainium-emulation-pack-latest.json")
	sum, err := WriteVariant(loadTestRegistry(t), path, Options{Variant: catalog.VariantStandard})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Included != 1 {
		t.Errorf("Included = %d, want 1", sum.Included)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `{"apps":[`) {
		t.Errorf("artifact shape: %s", data)
	}
}

func TestVariant_KeepsSurroundingKeys(t *testing.T) {
	t.Parallel()

	reg, err := catalog.Parse([]byte(`{"schemaVersion":2,"apps":[` +
		`{"id":"a","url":"https://example.com","author":"x","name":"App","overrideSource":"HTML"}` +
		`],"updatedAt":"2026-08-01"}`))
	if err != nil {
		t.Fatal(err)
	}

	doc, _, err := Variant(reg, Options{Variant: catalog.VariantStandard})
	if err != nil {
		t.Fatal(err)
	}

	out := string(doc)
	if !strings.HasPrefix(out, `{"schemaVersion":2,`) {
		t.Errorf("leading top-level key dropped: %s", out)
	}
	if !strings.HasSuffix(out, `,"updatedAt":"2026-08-01"}`) {
		t.Errorf("trailing top-level key dropped: %s", out)
	}
}

func TestVariant_EmptyRegistry(t *testing.T) {
	t.Parallel()

	reg, err := catalog.Parse([]byte(`{"apps":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	doc, sum, err := Variant(reg, Options{Variant: catalog.VariantStandard})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Included != 0 || sum.Excluded != 0 {
		t.Errorf("summary = %+v, want zeros", sum)
	}
	if string(doc) != `{"apps":[]}` {
		t.Errorf("empty export = %s", doc)
	}
}
