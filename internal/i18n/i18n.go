// Package i18n serves the UI's translation bundles. Bundles are embedded
// JSON maps keyed by dotted message IDs; language negotiation follows
// Accept-Language via golang.org/x/text, falling back to English.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLang is the fallback bundle.
const DefaultLang = "en"

// supported and bundleNames are index-aligned: the matcher result index
// selects the bundle file.
var supported = []language.Tag{
	language.English,            // first entry is the fallback
	language.TraditionalChinese,
	language.Spanish,
}

var bundleNames = []string{"en", "zh-TW", "es"}

var matcher = language.NewMatcher(supported)

// Languages returns the bundle names available, sorted.
func Languages() []string {
	out := make([]string, len(bundleNames))
	copy(out, bundleNames)
	sort.Strings(out)
	return out
}

// Match negotiates an Accept-Language header (or a bare tag) down to one of
// the available bundle names. Anything unknown resolves to English.
func Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, _ := matcher.Match(tags...)
	return bundleNames[idx]
}

// Bundle loads one translation bundle by name.
func Bundle(name string) (map[string]string, error) {
	known := false
	for _, b := range bundleNames {
		if b == name {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown locale %q", name)
	}
	data, err := localeFS.ReadFile("locales/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", name, err)
	}
	var msgs map[string]string
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", name, err)
	}
	return msgs, nil
}
