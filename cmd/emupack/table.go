// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"emupack-cli/internal/docgen"
	"emupack-cli/pkg/catalog"
)

var (
	tableOutput  string
	tablePreview bool
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Generate the categorized application tables",
	Long: `Generate the per-category markdown application tables used in the
README. Each row links the app's homepage and a one-click
Add-to-Obtainium deep link, and marks which export variants include it.`,
	RunE: runTable,
}

func init() {
	tableCmd.Flags().StringVarP(&tableOutput, "output", "o", "", "output markdown file (defaults to stdout)")
	tableCmd.Flags().BoolVar(&tablePreview, "preview", false, "render the markdown in the terminal")
}

func runTable(cmd *cobra.Command, args []string) error {
	reg, err := catalog.Load(registryFile)
	if err != nil {
		return err
	}

	markdown, err := docgen.CategoryTables(reg.Apps)
	if err != nil {
		return err
	}

	if tablePreview {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		)
		if err != nil {
			return err
		}
		rendered, err := renderer.Render(markdown)
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	}

	if tableOutput == "" {
		fmt.Println(markdown)
		return nil
	}

	if err := os.WriteFile(tableOutput, []byte(markdown), 0o644); err != nil {
		return err
	}
	fmt.Printf("Category-based markdown table written to %s\n", tableOutput)
	return nil
}
