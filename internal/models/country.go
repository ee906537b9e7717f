package models

// Display languages supported by the catalog.
const (
	LanguageEN     = "en"
	LanguageFR     = "fr"
	LanguageNative = "native"
)

// Continent codes used by the country catalog.
var ContinentNames = map[string]string{
	"AF": "Africa",
	"AS": "Asia",
	"EU": "Europe",
	"NA": "North America",
	"SA": "South America",
	"OC": "Oceania",
	"AN": "Antarctica",
}

// Country is a quiz subject from the country catalog.
type Country struct {
	ID         int64
	NameEN     string
	NameFR     string
	NameNative string
	ISO2Code   string
	ISO3Code   string
	FlagPath   string // empty when no flag asset is available
	Continent  string
	Capitals   []City
}

// HasFlag reports whether a flag asset exists for the country.
func (c *Country) HasFlag() bool {
	return c.FlagPath != ""
}

// Name returns the country name in the requested language, falling back to
// English for unknown languages.
func (c *Country) Name(language string) string {
	switch language {
	case LanguageFR:
		return c.NameFR
	case LanguageNative:
		return c.NameNative
	default:
		return c.NameEN
	}
}

// CapitalIDs returns the ids of the country's capital cities.
func (c *Country) CapitalIDs() []int64 {
	ids := make([]int64, len(c.Capitals))
	for i, city := range c.Capitals {
		ids[i] = city.ID
	}
	return ids
}

// City is a city attached to a country. Several cities can be capitals of the
// same country (e.g. South Africa).
type City struct {
	ID        int64
	NameEN    string
	NameFR    string
	IsCapital bool
}

// Name returns the city name in the requested language, falling back to
// English.
func (c *City) Name(language string) string {
	if language == LanguageFR {
		return c.NameFR
	}
	return c.NameEN
}
