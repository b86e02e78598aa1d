package upstream

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed cuisines.yaml
var cuisinesYAML []byte

// Cuisines maps a country name to the Spoonacular cuisine used for its food
// recommendations.
type Cuisines struct {
	byCountry map[string]string
	names     map[string]string
}

// CuisineEntry is one row of the table.
type CuisineEntry struct {
	Country string `json:"country"`
	Cuisine string `json:"cuisine"`
}

// DefaultCuisines loads the table compiled into the binary.
func DefaultCuisines() (*Cuisines, error) {
	return LoadCuisines(cuisinesYAML)
}

// LoadCuisines parses a YAML mapping of country to cuisine. Duplicate
// countries (also when differing only in case) and empty values are errors.
func LoadCuisines(data []byte) (*Cuisines, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse cuisine table: %w", err)
	}

	c := &Cuisines{
		byCountry: make(map[string]string, len(raw)),
		names:     make(map[string]string, len(raw)),
	}
	for country, cuisine := range raw {
		country = strings.TrimSpace(country)
		cuisine = strings.TrimSpace(cuisine)
		if country == "" {
			return nil, fmt.Errorf("cuisine table: empty country name")
		}
		if cuisine == "" {
			return nil, fmt.Errorf("cuisine table: empty cuisine for %q", country)
		}
		key := strings.ToLower(country)
		if prev, ok := c.names[key]; ok {
			return nil, fmt.Errorf("cuisine table: %q and %q name the same country", prev, country)
		}
		c.byCountry[key] = cuisine
		c.names[key] = country
	}
	return c, nil
}

// Lookup returns the cuisine for country, matching names case-insensitively.
func (c *Cuisines) Lookup(country string) (string, bool) {
	cuisine, ok := c.byCountry[strings.ToLower(strings.TrimSpace(country))]
	return cuisine, ok
}

func (c *Cuisines) Len() int { return len(c.byCountry) }

// Entries returns the table sorted by country.
func (c *Cuisines) Entries() []CuisineEntry {
	out := make([]CuisineEntry, 0, len(c.byCountry))
	for key, cuisine := range c.byCountry {
		out = append(out, CuisineEntry{Country: c.names[key], Cuisine: cuisine})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}
