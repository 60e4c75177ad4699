// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"emupack-cli/internal/deeplink"
	"emupack-cli/pkg/catalog"
)

var urlsCmd = &cobra.Command{
	Use:   "urls [export.json]",
	Short: "Print click-to-install Obtainium deep links",
	Long: `Print an Obtainium deep link for every app. The argument is an export
file; without one, links are generated from the registry itself.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUrls,
}

func runUrls(cmd *cobra.Command, args []string) error {
	path := registryFile
	if len(args) == 1 {
		path = args[0]
	}

	reg, err := catalog.Load(path)
	if err != nil {
		return err
	}

	for _, app := range reg.Apps {
		link, err := deeplink.ForEntry(app)
		if err != nil {
			return fmt.Errorf("generating link for %s: %w", app.Name, err)
		}
		fmt.Printf("%s: %s\n\n", app.Name, link)
	}
	return nil
}
