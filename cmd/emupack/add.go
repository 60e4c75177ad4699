// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"emupack-cli/internal/schema"
	"emupack-cli/pkg/catalog"
)

// categoryChoices are the curated category names offered when adding an app.
var categoryChoices = []string{
	"Emulator",
	"Frontend",
	"Utilities",
	"PC Emulation",
	"Streaming",
}

// Variant choices control which exports the new app lands in.
const (
	variantBoth       = "Both"
	variantStandard   = "Standard only"
	variantDualScreen = "Dual-screen only"
	variantReadmeOnly = "README only"
)

var variantChoices = []string{variantBoth, variantStandard, variantDualScreen, variantReadmeOnly}

var githubRepoPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)`)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Interactively add a new app to the registry",
	Long: `Walk through adding a new app to the registry.

The source, author, and display name are detected from the URL where
possible. The generated entry is previewed before being appended to
the registry file.`,
	RunE: runAdd,
}

// extractGitHubInfo pulls author and a humanized repo name from a GitHub URL.
func extractGitHubInfo(url string) (author, name string, ok bool) {
	m := githubRepoPattern.FindStringSubmatch(url)
	if m == nil {
		return "", "", false
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(m[2])
	return m[1], titleCase(name), true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// buildAddedEntry assembles the canonical entry from the interview answers.
func buildAddedEntry(a addAnswers) (*catalog.Entry, error) {
	sparse := map[string]any{}
	if a.includePrereleases {
		sparse["includePrereleases"] = true
	}
	if a.verifyLatestTag {
		sparse["verifyLatestTag"] = true
	}
	if a.nameOverride != "" {
		sparse["appName"] = a.nameOverride
	}
	settings, err := schema.Resolve(sparse, schema.Source(a.source)).Encode()
	if err != nil {
		return nil, err
	}

	var metaPairs []catalog.MetaPair
	switch a.variant {
	case variantStandard:
		metaPairs = append(metaPairs, catalog.MetaPair{Key: "includeInDualScreen", Value: false})
	case variantDualScreen:
		metaPairs = append(metaPairs, catalog.MetaPair{Key: "includeInStandard", Value: false})
	case variantReadmeOnly:
		metaPairs = append(metaPairs, catalog.MetaPair{Key: "excludeFromExport", Value: true})
	}
	if a.nameOverride != "" {
		metaPairs = append(metaPairs, catalog.MetaPair{Key: "nameOverride", Value: a.nameOverride})
	}
	if a.urlOverride != "" {
		metaPairs = append(metaPairs, catalog.MetaPair{Key: "urlOverride", Value: a.urlOverride})
	}
	meta, err := catalog.NewMeta(metaPairs...)
	if err != nil {
		return nil, err
	}

	return catalog.NewEntry(catalog.NewEntryParams{
		ID:             a.id,
		URL:            a.url,
		Author:         a.author,
		Name:           a.name,
		Settings:       catalog.NewSettingsRaw(settings),
		Categories:     []string{a.category},
		OverrideSource: a.source,
		Meta:           meta,
	}), nil
}

type addAnswers struct {
	url                string
	source             string
	author             string
	name               string
	id                 string
	category           string
	variant            string
	includePrereleases bool
	verifyLatestTag    bool
	nameOverride       string
	urlOverride        string
}

func runAdd(cmd *cobra.Command, args []string) error {
	var a addAnswers

	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	urlForm := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("App URL").
			Description("GitHub/GitLab/Codeberg/other release page").
			Validate(required("URL")).
			Value(&a.url),
	))
	if err := urlForm.Run(); err != nil {
		return err
	}

	if detected := schema.DetectSource(a.url); detected != "" {
		a.source = string(detected)
		fmt.Println(SubtitleStyle.Render("  Detected source: ") + a.source)
	} else {
		a.source = string(schema.SourceGitHub)
	}
	if author, name, ok := extractGitHubInfo(a.url); ok {
		a.author, a.name = author, name
		fmt.Println(SubtitleStyle.Render("  Detected author: ") + author)
		fmt.Println(SubtitleStyle.Render("  Detected name: ") + name)
	}

	detailsForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Source type").Value(&a.source),
			huh.NewInput().Title("Author").Validate(required("author")).Value(&a.author),
			huh.NewInput().Title("App name").Validate(required("name")).Value(&a.name),
			huh.NewInput().
				Title("Android package ID").
				Placeholder("com.example.app").
				Validate(required("package ID")).
				Value(&a.id),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select category").
				Options(huh.NewOptions(categoryChoices...)...).
				Value(&a.category),
			huh.NewSelect[string]().
				Title("Include in which release(s)").
				Options(huh.NewOptions(variantChoices...)...).
				Value(&a.variant),
			huh.NewConfirm().Title("Include pre-releases?").Value(&a.includePrereleases),
			huh.NewConfirm().Title("Verify latest tag?").Value(&a.verifyLatestTag),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("App name override").
				Description("Sets the display name in both Obtainium and the README; leave blank to skip").
				Value(&a.nameOverride),
			huh.NewInput().
				Title("Homepage URL override").
				Description("Leave blank to skip").
				Value(&a.urlOverride),
		),
	)
	if err := detailsForm.Run(); err != nil {
		return err
	}

	entry, err := buildAddedEntry(a)
	if err != nil {
		return err
	}

	raw, err := entry.MarshalJSON()
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err == nil {
		fmt.Println()
		fmt.Println(TitleStyle.Render("Generated entry preview"))
		fmt.Println(pretty.String())
	}

	confirmed := true
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Add this app to %s?", registryFile)).
			Value(&confirmed),
	)).Run(); err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Cancelled.")
		return nil
	}

	reg, err := catalog.Load(registryFile)
	if err != nil {
		return err
	}

	if existing := reg.FindByID(a.id); existing != nil {
		fmt.Println(WarningStyle.Render(fmt.Sprintf("Warning: app with ID '%s' already exists", a.id)))
		addAnyway := false
		if err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title("Add anyway?").Value(&addAnyway),
		)).Run(); err != nil {
			return err
		}
		if !addAnyway {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	reg.Apps = append(reg.Apps, entry)
	if err := reg.Save(registryFile); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(SuccessStyle.Render("App added to ") + FileStyle.Render(registryFile))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Regenerate the exports and README")
	fmt.Println("  2. Review the diff before committing")
	return nil
}
