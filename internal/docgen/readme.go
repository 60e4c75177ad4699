// SPDX-License-Identifier: MPL-2.0

package docgen

import (
	"fmt"
	"os"
	"strings"
)

// StitchReadme joins the given markdown part files into a single document,
// separated by blank lines, and writes it to outPath.
func StitchReadme(outPath string, partPaths []string) error {
	parts := make([]string, 0, len(partPaths))
	for _, path := range partPaths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading part %s: %w", path, err)
		}
		parts = append(parts, strings.TrimSpace(string(content)))
	}

	combined := strings.Join(parts, "\n\n") + "\n"
	if err := os.WriteFile(outPath, []byte(combined), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}
