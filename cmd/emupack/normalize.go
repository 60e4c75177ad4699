// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"emupack-cli/pkg/catalog"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rewrite the registry into canonical shape",
	Long: `Rewrite every registry entry into canonical shape: keys in canonical
order, missing defaults backfilled, and object-form settings re-encoded
as strings. Unknown keys are preserved at the end of each entry.

The file is rewritten in place.`,
	RunE: runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	reg, err := catalog.Load(registryFile)
	if err != nil {
		return err
	}
	if len(reg.Apps) == 0 {
		return fmt.Errorf("no apps found in %s", registryFile)
	}

	changed := reg.NormalizeAll()
	if err := reg.Save(registryFile); err != nil {
		return err
	}

	if changed > 0 {
		fmt.Printf("Normalized %d app(s) in %s\n", changed, registryFile)
	} else {
		fmt.Printf("All %d apps already normalized\n", len(reg.Apps))
	}
	return nil
}
