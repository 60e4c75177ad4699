// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"emupack-cli/internal/export"
	"emupack-cli/pkg/catalog"
)

var (
	exportVariant string
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build a minified Obtainium import file for a variant",
	Long: `Build an installable Obtainium import file from the registry.

Apps are filtered by variant, meta blocks are stripped, sparse settings
are hydrated against per-source defaults, and the result is written as
minified JSON.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportVariant, "variant", string(catalog.VariantStandard), "variant to build (standard or dual-screen)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (required)")
	_ = exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	variant := catalog.Variant(exportVariant)
	if !variant.IsValid() {
		return fmt.Errorf("unknown variant %q (valid: standard, dual-screen)", exportVariant)
	}

	reg, err := catalog.Load(registryFile)
	if err != nil {
		return err
	}

	summary, err := export.WriteVariant(reg, exportOutput, export.Options{Variant: variant})
	if err != nil {
		return err
	}

	label := ""
	if variant != catalog.VariantStandard {
		label = fmt.Sprintf(" (%s)", variant)
	}
	fmt.Printf("Minified JSON%s saved to %s (%d apps included)\n", label, exportOutput, summary.Included)
	return nil
}
