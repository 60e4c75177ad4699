// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"emupack-cli/internal/envfile"
)

// DefaultRegistryPath is the curated registry file, relative to the repo root.
const DefaultRegistryPath = "src/applications.json"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// registryFile is the path to the curated registry JSON
	registryFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "emupack",
		Short: "Curate and publish the Obtainium Emulation Pack",
		Long: TitleStyle.Render("emupack") + SubtitleStyle.Render(" - Curate and publish the Obtainium Emulation Pack") + `

emupack manages a curated registry of Android emulation apps and turns
it into installable Obtainium import files. It validates entries,
resolves sparse settings against per-source defaults, renders README
tables and deep links, live-tests release sources, and packages
GitHub releases.

` + SubtitleStyle.Render("Typical workflow:") + `
  1. Add or edit apps in src/applications.json
  2. Validate and normalize the registry
  3. Export variant JSONs and regenerate the README
  4. Publish a release

` + SubtitleStyle.Render("Examples:") + `
  emupack add                 Interactively add a new app
  emupack validate            Check the registry for problems
  emupack export --variant dual-screen -o pack-ds.json
  emupack test Dolphin        Live-test matching apps
  emupack release --dry-run   Preview the next release`,
	}
)

func init() {
	cobra.OnInitialize(initRootEnv)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&registryFile, "file", "f", DefaultRegistryPath, "path to the registry JSON file")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(readmeCmd)
	rootCmd.AddCommand(urlsCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(releaseCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootEnv loads a repo-local .env file so tokens like GITHUB_TOKEN
// are available without exporting them. Real environment variables win.
func initRootEnv() {
	if _, err := envfile.Load("."); err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+"could not read .env: "+err.Error())
	}
}

// newLogger builds the logger used by long-running subcommands. Verbose
// mode lowers the level to debug.
func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
