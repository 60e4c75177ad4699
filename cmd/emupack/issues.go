// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emupack-cli/internal/issues"
	"emupack-cli/internal/livetest"
)

var (
	issuesRunURL string
	issuesDryRun bool
)

var issuesCmd = &cobra.Command{
	Use:   "issues <results.json>",
	Short: "Sync GitHub issues from live-test results",
	Long: `Read a machine-readable results file from 'emupack test --json' and
reconcile GitHub issues: open one for each newly failing app and close
issues for apps that pass again.

Designed to run in GitHub Actions as part of the scheduled test workflow.`,
	Args: cobra.ExactArgs(1),
	RunE: runIssues,
}

func init() {
	issuesCmd.Flags().StringVar(&issuesRunURL, "run-url", "", "URL of the GitHub Actions workflow run")
	issuesCmd.Flags().BoolVar(&issuesDryRun, "dry-run", false, "print planned actions without creating or closing issues")
}

func runIssues(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("loading results file: %w", err)
	}

	var doc livetest.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("loading results file: %w", err)
	}
	if len(doc.Results) == 0 {
		fmt.Println("No test results to process.")
		return nil
	}

	fmt.Printf("Processing %d results: %d passed, %d failed\n",
		doc.Summary.Total, doc.Summary.Passed, doc.Summary.Failed)

	manager := issues.NewManager(".",
		issues.WithRunURL(issuesRunURL),
		issues.WithDryRun(issuesDryRun),
		issues.WithLogger(newLogger()),
	)
	created, closed, err := manager.Process(cmd.Context(), doc.Results)
	if err != nil {
		return err
	}

	if !issuesDryRun {
		fmt.Printf("Created %d issue(s), closed %d issue(s)\n", created, closed)
	}
	return nil
}
