package geocode

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/unicode/norm"
)

// AcceptLanguage builds an Accept-Language header value from an ordered
// preference list. Invalid tags are dropped and English is always present as
// the last fallback.
func AcceptLanguage(languages []string) string {
	tags := make([]string, 0, len(languages)+1)
	seen := make(map[string]bool, len(languages)+1)
	hasEnglish := false

	for _, raw := range languages {
		tag, err := language.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		name := tag.String()
		if seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)

		if base, _ := tag.Base(); base.String() == "en" {
			hasEnglish = true
		}
	}

	if !hasEnglish {
		tags = append(tags, language.English.String())
	}

	return strings.Join(tags, ",")
}

// primaryLanguage returns the first usable tag from the list, or "".
func primaryLanguage(languages []string) string {
	for _, raw := range languages {
		if tag, err := language.Parse(strings.TrimSpace(raw)); err == nil {
			return tag.String()
		}
	}
	return ""
}

// NormalizeQuery folds a free-text query into a canonical form used for cache
// and deduplication keys: NFC, lower case, single spaces.
func NormalizeQuery(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	// Casers keep state, so each call gets its own.
	return norm.NFC.String(cases.Lower(language.Und).String(collapsed))
}

// CountryName returns the English name of an ISO 3166-1 alpha-2 code, or ""
// when the code is unknown.
func CountryName(code string) string {
	region, err := language.ParseRegion(strings.TrimSpace(code))
	if err != nil || !region.IsCountry() {
		return ""
	}
	return display.English.Regions().Name(region)
}
