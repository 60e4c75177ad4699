// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"emupack-cli/internal/docgen"
)

var readmeOutput string

var readmeCmd = &cobra.Command{
	Use:   "readme <part.md> [part.md...]",
	Short: "Stitch markdown parts into the README",
	Long: `Stitch markdown files into a single README. Parts are trimmed and
joined with blank lines in the order given, so generated tables can be
sandwiched between hand-written sections.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReadme,
}

func init() {
	readmeCmd.Flags().StringVarP(&readmeOutput, "output", "o", "README.md", "output file")
}

func runReadme(cmd *cobra.Command, args []string) error {
	if err := docgen.StitchReadme(readmeOutput, args); err != nil {
		return err
	}
	fmt.Printf("%s successfully created with %d sections.\n", readmeOutput, len(args))
	return nil
}
