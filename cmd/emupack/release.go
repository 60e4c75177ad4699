// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"emupack-cli/internal/release"
)

var (
	releaseVersion   string
	releaseNotes     string
	releaseNotesFile string
	releaseDryRun    bool
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Tag and publish a GitHub release with export artifacts",
	Long: `Create a GitHub release: pick the next version, detect app changes
since the previous tag, generate release notes, tag, push, and upload
versioned copies of the export artifacts.

Run the exports first so the artifacts are current.`,
	RunE: runRelease,
}

func init() {
	releaseCmd.Flags().StringVar(&releaseVersion, "version", "", "release version (e.g. v7.5.0); prompts if not provided")
	releaseCmd.Flags().StringVarP(&releaseNotes, "notes", "n", "", "release notes markdown string; skips generation and editor")
	releaseCmd.Flags().StringVar(&releaseNotesFile, "notes-file", "", "file containing release notes; skips generation and editor")
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "show what would happen without making changes")
}

// ownerEmailsFromEnv splits the OWNER_EMAILS list used to filter the
// maintainer out of the contributors section.
func ownerEmailsFromEnv() []string {
	raw := os.Getenv("OWNER_EMAILS")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// promptVersion asks which bump to make, offering suggestions derived
// from the latest tag.
func promptVersion(latest string) (string, error) {
	suggestions := release.SuggestVersions(latest)

	if latest != "" {
		fmt.Println("Latest tag: " + latest)
	} else {
		fmt.Println("No existing tags found.")
	}

	const customChoice = "custom"
	choice := suggestions.Patch
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Select version").
			Options(
				huh.NewOption("patch - "+suggestions.Patch, suggestions.Patch),
				huh.NewOption("minor - "+suggestions.Minor, suggestions.Minor),
				huh.NewOption("major - "+suggestions.Major, suggestions.Major),
				huh.NewOption("custom", customChoice),
			).
			Value(&choice),
	)).Run(); err != nil {
		return "", err
	}
	if choice != customChoice {
		return choice, nil
	}

	var custom string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Enter version").
			Placeholder("v1.2.3").
			Validate(func(s string) error {
				_, err := release.NormalizeVersion(s)
				return err
			}).
			Value(&custom),
	)).Run(); err != nil {
		return "", err
	}
	return release.NormalizeVersion(custom)
}

func runRelease(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	flow := release.NewFlow(".", registryFile,
		release.WithOwnerEmails(ownerEmailsFromEnv()),
		release.WithLogger(newLogger()),
	)

	if err := flow.CheckPrerequisites(ctx); err != nil {
		return err
	}

	latest, err := flow.FetchLatestTag(ctx)
	if err != nil {
		return err
	}

	version := releaseVersion
	if version != "" {
		if version, err = release.NormalizeVersion(version); err != nil {
			return err
		}
	} else {
		if version, err = promptVersion(latest); err != nil {
			return err
		}
	}

	exists, err := flow.TagExists(ctx, version)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("tag %s already exists", version)
	}

	fmt.Println("\nDetecting app changes...")
	diff, err := flow.DetectChanges(ctx, latest)
	if err != nil {
		return err
	}
	fmt.Printf("  Added:   %d\n", len(diff.Added))
	fmt.Printf("  Changed: %d\n", len(diff.Changed))
	fmt.Printf("  Removed: %d\n", len(diff.Removed))

	var notes string
	switch {
	case releaseNotesFile != "":
		data, err := os.ReadFile(releaseNotesFile)
		if err != nil {
			return err
		}
		notes = strings.TrimSpace(string(data))
	case releaseNotes != "":
		notes = releaseNotes
	default:
		notes, err = flow.GenerateNotes(ctx, latest, diff)
		if err != nil {
			return err
		}
		if releaseDryRun {
			if err := os.MkdirAll("tmp", 0o755); err != nil {
				return err
			}
			previewPath := filepath.Join("tmp", "release-notes-"+version+".md")
			if err := os.WriteFile(previewPath, []byte(notes), 0o644); err != nil {
				return err
			}
			fmt.Println("\nRelease notes written to " + FileStyle.Render(previewPath))
		} else {
			notes, err = flow.EditNotes(ctx, notes)
			if err != nil {
				return err
			}
		}
	}

	if strings.TrimSpace(notes) == "" {
		fmt.Println(WarningStyle.Render("Warning: ") + "release notes are empty; GitHub will auto-generate them.")
		notes = ""
	}

	if releaseDryRun {
		fmt.Println()
		fmt.Println(TitleStyle.Render("=== DRY RUN ==="))
		fmt.Printf("  Version:     %s\n", version)
		if latest != "" {
			fmt.Printf("  Latest tag:  %s\n", latest)
		} else {
			fmt.Println("  Latest tag:  (none)")
		}
		fmt.Println("\n  Would run:")
		fmt.Printf("    1. git tag %s\n", version)
		fmt.Printf("    2. git push origin %s\n", version)
		fmt.Printf("    3. gh release create %s --title %s <assets>\n", version, version)
		fmt.Println("\n  Assets:")
		for _, name := range release.ArtifactNames {
			fmt.Printf("    - %s\n", strings.Replace(name, "latest", version, 1))
		}
		fmt.Println()
		return nil
	}

	if err := flow.VerifyArtifacts(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Version:        %s\n", version)
	fmt.Printf("Standard apps:  %d\n", flow.AppCount(release.ArtifactNames[0]))
	fmt.Printf("Dual-screen:    %d\n", flow.AppCount(release.ArtifactNames[1]))
	if notes != "" {
		preview, _, _ := strings.Cut(notes, "\n")
		if len(preview) > 80 {
			preview = preview[:80] + "..."
		}
		fmt.Printf("Notes preview:  %s\n", preview)
	} else {
		fmt.Println("Notes:          (auto-generated from commits)")
	}
	fmt.Println()

	proceed := false
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title("Proceed with release?").Value(&proceed),
	)).Run(); err != nil {
		return err
	}
	if !proceed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := flow.Publish(ctx, &release.Plan{
		Version:   version,
		LatestTag: latest,
		Diff:      diff,
		Notes:     notes,
	}); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Release %s created successfully!", version)))
	return nil
}
