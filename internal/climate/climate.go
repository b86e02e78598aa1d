// Package climate derives a coarse climate label from a temperature and a
// weather description.
package climate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDataUnavailable is returned when upstream weather data lacks the fields
// needed to classify a country.
var ErrDataUnavailable = errors.New("climate data unavailable")

type Label int

const (
	Unknown Label = iota
	Tropical
	Dry
	Temperate
	Cold
)

var labelNames = map[Label]string{
	Unknown:   "Unknown",
	Tropical:  "Tropical",
	Dry:       "Dry",
	Temperate: "Temperate",
	Cold:      "Cold",
}

func (l Label) String() string {
	if s, ok := labelNames[l]; ok {
		return s
	}
	return "Unknown"
}

// MarshalText lets labels travel as their names in JSON.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// LookupLabel resolves any label name, Unknown included. Matching is exact.
func LookupLabel(name string) (Label, bool) {
	for l, s := range labelNames {
		if s == name {
			return l, true
		}
	}
	return Unknown, false
}

// Selectable lists the labels a user can ask for, in form order.
func Selectable() []Label {
	return []Label{Tropical, Dry, Temperate, Cold}
}

// ParseLabel resolves a user-facing climate name. Matching ignores case and
// surrounding whitespace. Unknown is not selectable and is rejected.
func ParseLabel(s string) (Label, error) {
	want := strings.TrimSpace(s)
	for _, l := range Selectable() {
		if strings.EqualFold(l.String(), want) {
			return l, nil
		}
	}
	return Unknown, fmt.Errorf("invalid climate %q (allowed: Tropical, Dry, Temperate, Cold)", s)
}

// Sample is one weather observation for a country.
type Sample struct {
	Country      string
	TemperatureC float64
	Description  string
}

// Classify applies the decision rules in order; the first match wins.
//
//	temp >= 30                          Tropical
//	"desert" in description or 25..30   Dry
//	15..25                              Temperate
//	temp < 15                           Cold
//
// A temperature that matches no range (NaN) yields Unknown.
func Classify(temperatureC float64, description string) Label {
	desc := strings.ToLower(description)
	switch {
	case temperatureC >= 30:
		return Tropical
	case strings.Contains(desc, "desert") || (temperatureC >= 25 && temperatureC < 30):
		return Dry
	case temperatureC >= 15 && temperatureC < 25:
		return Temperate
	case temperatureC < 15:
		return Cold
	}
	return Unknown
}

func (s Sample) Classify() Label {
	return Classify(s.TemperatureC, s.Description)
}
