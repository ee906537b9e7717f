package validation

import (
	"strings"

	"geoclash/internal/models"
)

// NormalizeLanguage maps a requested display language onto a supported one.
// Unknown or empty values fall back to English.
func NormalizeLanguage(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case models.LanguageFR:
		return models.LanguageFR
	case models.LanguageNative:
		return models.LanguageNative
	default:
		return models.LanguageEN
	}
}

// NormalizeContinents uppercases, deduplicates and validates continent codes.
// Unknown codes are dropped. An empty result means no continent restriction.
func NormalizeContinents(continents []string) []string {
	var normalized []string
	seen := make(map[string]bool, len(continents))
	for _, continent := range continents {
		code := strings.ToUpper(strings.TrimSpace(continent))
		if _, known := models.ContinentNames[code]; !known || seen[code] {
			continue
		}
		seen[code] = true
		normalized = append(normalized, code)
	}
	return normalized
}

// NormalizeAnswer prepares free-text guesses for comparison: trimmed,
// lowercased, inner whitespace collapsed to single spaces.
func NormalizeAnswer(answer string) string {
	return strings.Join(strings.Fields(strings.ToLower(answer)), " ")
}

// NormalizeCode prepares identifier guesses, such as iso2 codes, for
// comparison.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
