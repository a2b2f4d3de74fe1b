package languageutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers are stateful, so every call gets its own.
func titleCaser() cases.Caser { return cases.Title(language.English) }
func lowerCaser() cases.Caser { return cases.Lower(language.English) }

// NormalizeCity collapses whitespace and title-cases the name for display.
func NormalizeCity(city string, fallback string) string {
	city = strings.Join(strings.Fields(city), " ")
	if city == "" {
		return fallback
	}
	return titleCaser().String(city)
}

// NormalizeColor lower-cases a color preference. Empty means no preference.
func NormalizeColor(color string) string {
	return lowerCaser().String(strings.TrimSpace(color))
}
