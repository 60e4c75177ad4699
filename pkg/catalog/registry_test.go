// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleRegistry = `{
  "name": "Obtainium Emulation Pack",
  "author": "RJNY",
  "apps": [
    {
      "id": "org.dolphinemu.dolphinemu",
      "url": "https://github.com/dolphin-emu/dolphin",
      "author": "Dolphin Team",
      "name": "Dolphin",
      "additionalSettings": "{\"trackOnly\":false}",
      "categories": [
        "Emulator"
      ],
      "allowIdChange": false,
      "overrideSource": "GitHub"
    }
  ],
  "trailing": true
}
`

func TestParse(t *testing.T) {
	t.Parallel()

	reg, err := Parse([]byte(sampleRegistry))
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.Apps) != 1 {
		t.Fatalf("len(Apps) = %d, want 1", len(reg.Apps))
	}
	if reg.Apps[0].ID != "org.dolphinemu.dolphinemu" {
		t.Errorf("Apps[0].ID = %q", reg.Apps[0].ID)
	}
}

func TestParse_MissingApps(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"name":"pack"}`))
	if err == nil {
		t.Fatal("Parse succeeded without an apps key")
	}
	if !strings.Contains(err.Error(), "missing 'apps' key") {
		t.Errorf("error = %v, want missing 'apps' key", err)
	}
}

func TestParse_NotAnObject(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("Parse accepted a JSON array")
	}
}

func TestRegistry_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	reg, err := Parse([]byte(sampleRegistry))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "applications.json")
	if err := reg.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	if got != sampleRegistry {
		t.Errorf("save round trip changed the document:\n got: %s\nwant: %s", got, sampleRegistry)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("saved file missing trailing newline")
	}
}

func TestRegistry_SavePreservesSurroundingKeys(t *testing.T) {
	t.Parallel()

	reg, err := Parse([]byte(sampleRegistry))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "applications.json")
	if err := reg.Save(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	nameIdx := strings.Index(got, `"name": "Obtainium Emulation Pack"`)
	appsIdx := strings.Index(got, `"apps"`)
	trailIdx := strings.Index(got, `"trailing": true`)
	if nameIdx == -1 || appsIdx == -1 || trailIdx == -1 {
		t.Fatalf("saved document missing expected keys:\n%s", got)
	}
	if !(nameIdx < appsIdx && appsIdx < trailIdx) {
		t.Errorf("top-level key order not preserved:\n%s", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Load on a missing file succeeded")
	}
}

func TestRegistry_FindByID(t *testing.T) {
	t.Parallel()

	reg, err := Parse([]byte(sampleRegistry))
	if err != nil {
		t.Fatal(err)
	}

	if app := reg.FindByID("org.dolphinemu.dolphinemu"); app == nil {
		t.Error("FindByID missed an existing id")
	}
	if app := reg.FindByID("com.example.absent"); app != nil {
		t.Errorf("FindByID returned %v for an absent id", app)
	}
}
