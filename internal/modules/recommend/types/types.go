package types

import (
	"strings"

	"github.com/ebitech02/WanderWise/internal/climate"
)

// Continent is a choice on the preference form and the RestCountries region
// it maps to. Subregions, when set, narrow the region listing.
type Continent struct {
	Name       string
	Region     string
	Subregions []string
}

var continents = []Continent{
	{Name: "Africa", Region: "Africa"},
	{Name: "Asia", Region: "Asia"},
	{Name: "Europe", Region: "Europe"},
	{Name: "North America", Region: "Americas", Subregions: []string{"North America", "Central America", "Caribbean"}},
	{Name: "South America", Region: "Americas", Subregions: []string{"South America"}},
	{Name: "Australia", Region: "Oceania"},
	{Name: "Antarctica", Region: "Antarctic"},
}

// Continents returns the selectable continents in form order.
func Continents() []Continent {
	out := make([]Continent, len(continents))
	copy(out, continents)
	return out
}

// LookupContinent matches name case-insensitively.
func LookupContinent(name string) (Continent, bool) {
	name = strings.TrimSpace(name)
	for _, c := range continents {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Continent{}, false
}

// Preferences is the validated form/query input.
type Preferences struct {
	Continent string `json:"continent" validate:"required,continent"`
	Climate   string `json:"climate" validate:"required,climate"`
}

type CountryBundle struct {
	Name                string        `json:"name"`
	Climate             climate.Label `json:"climate"`
	NotablePlaces       []string      `json:"notable_places"`
	Description         string        `json:"description"`
	FoodRecommendations []string      `json:"food_recommendations"`
	FlagURL             string        `json:"flag_url"`
	Capital             string        `json:"capital"`
	Currency            string        `json:"currency"`
	CallingCode         string        `json:"calling_code"`
	// Degraded names the sections that fell back to a placeholder.
	Degraded []string `json:"degraded,omitempty"`
}

// Result is one run of the pipeline.
type Result struct {
	Continent  string          `json:"continent"`
	Region     string          `json:"region"`
	Climate    climate.Label   `json:"climate"`
	Countries  []CountryBundle `json:"countries"`
	Candidates int             `json:"candidates"`
	Skipped    int             `json:"skipped"`
}
