// SPDX-License-Identifier: MPL-2.0

package docgen

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStitchReadme(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := filepath.Join(dir, "01-header.md")
	body := filepath.Join(dir, "02-body.md")
	if err := os.WriteFile(header, []byte("# Pack\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(body, []byte("\nSome body text.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "README.md")
	if err := StitchReadme(out, []string{header, body}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "# Pack\n\nSome body text.\n"
	if string(data) != want {
		t.Errorf("stitched README = %q, want %q", data, want)
	}
}

func TestStitchReadme_MissingPart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := StitchReadme(filepath.Join(dir, "README.md"), []string{filepath.Join(dir, "absent.md")})
	if err == nil {
		t.Fatal("StitchReadme succeeded with a missing part")
	}
}
