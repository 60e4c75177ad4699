// SPDX-License-Identifier: MPL-2.0

package schema

type (
	// Setting is one recognized settings key: its default, the source types it
	// applies to (nil means every source), and whether the value is a regular
	// expression pattern.
	Setting struct {
		Key     string
		Default any
		Sources []Source
		IsRegex bool
	}
)

// releaseSources are the API-backed sources that expose release lists.
var releaseSources = []Source{SourceGitHub, SourceGitLab, SourceCodeberg}

// scrapeSources are the strategies that parse hyperlinks out of a page.
var scrapeSources = []Source{SourceHTML, SourceDirectAPKLink}

// settings is the schema table. Insertion order is the canonical key order for
// resolved settings objects; do not reorder entries.
var settings = []Setting{
	{Key: "includePrereleases", Default: false, Sources: releaseSources},
	{Key: "fallbackToOlderReleases", Default: true, Sources: releaseSources},
	{Key: "filterReleaseTitlesByRegEx", Default: "", Sources: releaseSources, IsRegex: true},
	{Key: "filterReleaseNotesByRegEx", Default: "", Sources: releaseSources, IsRegex: true},
	{Key: "verifyLatestTag", Default: false, Sources: []Source{SourceGitHub}},
	{Key: "dontSortReleasesList", Default: false, Sources: []Source{SourceGitHub}},
	{Key: "sortMethodChoice", Default: "date", Sources: releaseSources},
	{Key: "useLatestAssetDateAsReleaseDate", Default: false, Sources: []Source{SourceGitHub}},
	{Key: "releaseTitleAsVersion", Default: false, Sources: releaseSources},
	{Key: "releaseDateAsVersion", Default: false, Sources: releaseSources},
	{Key: "includeZips", Default: false, Sources: releaseSources},
	{Key: "trackOnly", Default: false},
	{Key: "versionExtractionRegEx", Default: "", IsRegex: true},
	{Key: "matchGroupToUse", Default: ""},
	{Key: "versionDetection", Default: true},
	{Key: "useVersionCodeAsOSVersion", Default: false},
	{Key: "apkFilterRegEx", Default: "", IsRegex: true},
	{Key: "invertAPKFilter", Default: false},
	{Key: "autoApkFilterByArch", Default: true},
	{Key: "appName", Default: ""},
	{Key: "appAuthor", Default: ""},
	{Key: "shizukuPretendToBeGooglePlay", Default: false},
	{Key: "allowInsecure", Default: false},
	{Key: "exemptFromBackgroundUpdates", Default: false},
	{Key: "skipUpdateNotifications", Default: false},
	{Key: "about", Default: ""},
	{Key: "refreshBeforeDownload", Default: false},
	{Key: "intermediateLink", Default: []any{}, Sources: scrapeSources},
	{Key: "customLinkFilterRegex", Default: "", Sources: scrapeSources, IsRegex: true},
	{Key: "versionExtractWholePage", Default: false, Sources: scrapeSources},
	{Key: "requestHeader", Default: []any{}, Sources: scrapeSources},
	{Key: "defaultPseudoVersioningMethod", Default: "partialAPKHash", Sources: scrapeSources},
	{Key: "sortByLastLinkSegment", Default: false, Sources: scrapeSources},
}

// deprecated maps retired settings keys to their replacements. Presence of a
// retired key is a warning, never an error, so packs authored against older
// installer versions keep importing.
var deprecated = map[string]string{
	"supportFixedAPKURL":      "defaultPseudoVersioningMethod",
	"sortByFileNamesNotLinks": "sortByLastLinkSegment",
}

// Derived views, computed once at init from the table above.
var (
	commonKeys  []string
	perSource   map[Source][]string
	regexKeys   []string
	settingsMap map[string]Setting
)

func init() {
	perSource = make(map[Source][]string)
	settingsMap = make(map[string]Setting, len(settings))

	for _, s := range settings {
		settingsMap[s.Key] = s
		if s.IsRegex {
			regexKeys = append(regexKeys, s.Key)
		}
		if s.Sources == nil {
			commonKeys = append(commonKeys, s.Key)
			continue
		}
		for _, src := range s.Sources {
			perSource[src] = append(perSource[src], s.Key)
		}
	}
}

// CommonKeys returns the keys applicable to every source, in canonical order.
func CommonKeys() []string {
	return append([]string(nil), commonKeys...)
}

// KeysFor returns the source-specific keys for the given source, in canonical
// order. Common keys are not included.
func KeysFor(source Source) []string {
	return append([]string(nil), perSource[source]...)
}

// RegexKeys returns every key whose value is a regular expression.
func RegexKeys() []string {
	return append([]string(nil), regexKeys...)
}

// Deprecated returns the retired-key → replacement mapping.
func Deprecated() map[string]string {
	out := make(map[string]string, len(deprecated))
	for k, v := range deprecated {
		out[k] = v
	}
	return out
}

// Lookup returns the definition for a settings key.
func Lookup(key string) (Setting, bool) {
	s, ok := settingsMap[key]
	return s, ok
}

// ValidKeysFor returns the full set of keys accepted for a source: common
// keys, the source's own keys, and deprecated keys.
func ValidKeysFor(source Source) map[string]bool {
	valid := make(map[string]bool)
	for _, k := range commonKeys {
		valid[k] = true
	}
	for k := range deprecated {
		valid[k] = true
	}
	if source != "" {
		for _, k := range perSource[source] {
			valid[k] = true
		}
	}
	return valid
}

// SourcesOwning returns the sources whose key set contains the given key,
// excluding the provided one. Used to phrase cross-source warnings.
func SourcesOwning(key string, excluding Source) []Source {
	var owners []Source
	for _, s := range settings {
		if s.Key != key || s.Sources == nil {
			continue
		}
		for _, src := range s.Sources {
			if src != excluding {
				owners = append(owners, src)
			}
		}
	}
	return owners
}
