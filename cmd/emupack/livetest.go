// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"emupack-cli/internal/livetest"
	"emupack-cli/internal/schema"
	"emupack-cli/pkg/catalog"
)

var (
	testIDFilter string
	testJSONOut  string
)

var testCmd = &cobra.Command{
	Use:   "test [name-filter]",
	Short: "Live-test that app sources still serve releases",
	Long: `Live-test each app's release source: fetch the latest matching release,
apply the app's filters, and verify installable APK assets exist.

Set GITHUB_TOKEN in .env or the environment to avoid API rate limits.

Examples:
  emupack test                       test all apps
  emupack test Dolphin               filter by name
  emupack test --id org.dolphinemu.dolphinemu
  emupack test --verbose             show APK URLs`,
	RunE: runLiveTest,
}

func init() {
	testCmd.Flags().StringVar(&testIDFilter, "id", "", "test only the app with this exact ID")
	testCmd.Flags().StringVar(&testJSONOut, "json", "", "write machine-readable results to this file")
}

func printTestResult(r livetest.Result) {
	status := SuccessStyle.Render("PASS")
	if !r.Passed {
		status = ErrorStyle.Render("FAIL")
	}

	line := fmt.Sprintf("  %s  %s", status, r.AppName)
	if r.Version != "" {
		line += " v" + r.Version
	}
	if r.APKCount > 0 {
		line += fmt.Sprintf(" (%d APKs)", r.APKCount)
	}
	line += fmt.Sprintf(" [%dms]", r.DurationMS)
	fmt.Println(line)

	if r.Error != "" {
		fmt.Printf("         Error: %s\n", r.Error)
	}
	for _, warning := range r.Warnings {
		fmt.Printf("         %s: %s\n", WarningStyle.Render("Warn"), warning)
	}
	if verbose {
		for i, url := range r.APKURLs {
			if i >= livetest.MaxDisplayedAPKURLs {
				break
			}
			fmt.Printf("         APK: %s\n", url)
		}
	}
}

func runLiveTest(cmd *cobra.Command, args []string) error {
	reg, err := catalog.Load(registryFile)
	if err != nil {
		return err
	}

	nameFilter := strings.ToLower(strings.Join(args, " "))
	apps := livetest.FilterApps(reg.Apps, nameFilter, testIDFilter)
	if len(apps) == 0 {
		return fmt.Errorf("no apps matched the filter")
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		githubCount := 0
		for _, app := range apps {
			if schema.EffectiveSource(schema.Source(app.OverrideSource), app.URL) == schema.SourceGitHub {
				githubCount++
			}
		}
		if githubCount > 0 {
			fmt.Printf("%s: %d GitHub apps to test, but GITHUB_TOKEN is not set. You may hit rate limits.\n"+
				"  Set it with: export GITHUB_TOKEN=<your_token>\n\n",
				WarningStyle.Render("Note"), githubCount)
		}
	}

	fmt.Printf("Testing %d app(s)...\n\n", len(apps))

	runner := livetest.NewRunner(
		livetest.WithGitHubClient(livetest.NewGitHubClient(livetest.WithGitHubToken(token))),
		livetest.WithLogger(newLogger()),
	)
	results := runner.Run(cmd.Context(), apps, printTestResult)

	summary := livetest.Summarize(results)
	fmt.Printf("\n%s\n", strings.Repeat("=", 60))
	fmt.Printf("Results: %d passed, %d failed, %d with warnings\n", summary.Passed, summary.Failed, summary.Warned)
	fmt.Printf("Time: %.1fs total\n", float64(summary.TotalTimeMS)/1000)

	if summary.Failed > 0 {
		fmt.Println("\nFailed apps:")
		for _, r := range results {
			if !r.Passed {
				fmt.Printf("  - %s: %s\n", r.AppName, r.Error)
			}
		}
	}

	if testJSONOut != "" {
		doc := livetest.Document{Summary: summary, Results: results}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(testJSONOut, append(data, '\n'), 0o644); err != nil {
			return err
		}
		fmt.Printf("\nResults written to %s\n", testJSONOut)
	}

	if summary.Failed > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d app(s) failed", summary.Failed)}
	}
	return nil
}
