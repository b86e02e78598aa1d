package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	placesRadiusMeters = 50000
	placesKinds        = "interesting_places"
	maxPlaces          = 12
)

// PlacesClient lists notable places around a point via OpenTripMap.
type PlacesClient struct {
	base   string
	apiKey string
	ep     *endpoint
}

func NewPlacesClient(base, apiKey string, opts Options) *PlacesClient {
	return &PlacesClient{base: base, apiKey: apiKey, ep: newEndpoint("opentripmap", opts)}
}

// Nearby returns up to 12 named places within 50 km of lat/lon. Unnamed
// places are dropped; no named place at all is NotFound.
func (c *PlacesClient) Nearby(ctx context.Context, lat, lon float64) Outcome[[]string] {
	q := url.Values{}
	q.Set("radius", strconv.Itoa(placesRadiusMeters))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("kinds", placesKinds)
	q.Set("format", "json")
	q.Set("apikey", c.apiKey)

	var items []struct {
		Name string `json:"name"`
	}
	if err := c.ep.getJSON(ctx, c.base+"?"+q.Encode(), &items); err != nil {
		return FromError[[]string](err)
	}

	names := make([]string, 0, maxPlaces)
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		names = append(names, name)
		if len(names) == maxPlaces {
			break
		}
	}
	if len(names) == 0 {
		return Missing[[]string](fmt.Errorf("%w: opentripmap: no places near %g,%g", ErrNotFound, lat, lon))
	}
	return Found(names)
}
