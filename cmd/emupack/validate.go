// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"emupack-cli/internal/validate"
	"emupack-cli/pkg/catalog"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the registry for schema and consistency problems",
	Long: `Check every registry entry for problems: missing required fields,
malformed URLs, unknown sources, invalid regular expressions in
settings, meta-key typos, deprecated settings keys, and per-variant
duplicate IDs.

Errors fail the command; warnings are advisory.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	reg, err := catalog.Load(registryFile)
	if err != nil {
		return err
	}

	res := validate.Registry(reg)

	if len(res.Warnings) > 0 {
		fmt.Printf("Warnings (%d):\n\n", len(res.Warnings))
		for _, w := range res.Warnings {
			fmt.Println(WarningStyle.Render("  ~ ") + w)
		}
		fmt.Println()
	}

	if len(res.Errors) > 0 {
		fmt.Printf("Validation failed with %d error(s):\n\n", len(res.Errors))
		for _, e := range res.Errors {
			fmt.Println(ErrorStyle.Render("  x ") + e)
		}
		return &ExitError{Code: 1, Err: fmt.Errorf("%d validation error(s)", len(res.Errors))}
	}

	summary := fmt.Sprintf("Validation passed: %d apps checked", len(reg.Apps))
	if len(res.Warnings) > 0 {
		summary += fmt.Sprintf(" (%d warnings)", len(res.Warnings))
	}
	fmt.Println(SuccessStyle.Render(summary))
	return nil
}
