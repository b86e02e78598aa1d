package upstream

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Country is the RestCountries metadata used by a recommendation. Empty
// string fields mean the upstream record did not carry them.
type Country struct {
	Name           string   `json:"name"`
	Region         string   `json:"region"`
	Subregion      string   `json:"subregion"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	HasCoordinates bool     `json:"has_coordinates"`
	FlagURL        string   `json:"flag_url"`
	Capital        string   `json:"capital"`
	Currencies     []string `json:"currencies"`
	CallingCode    string   `json:"calling_code"`
}

type countryRecord struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Region    string    `json:"region"`
	Subregion string    `json:"subregion"`
	LatLng    []float64 `json:"latlng"`
	Flags     struct {
		PNG string `json:"png"`
	} `json:"flags"`
	Capital    []string            `json:"capital"`
	Currencies map[string]struct{} `json:"currencies"`
	IDD        struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
}

func (r countryRecord) toCountry() Country {
	c := Country{
		Name:      r.Name.Common,
		Region:    r.Region,
		Subregion: r.Subregion,
		FlagURL:   r.Flags.PNG,
	}
	if len(r.LatLng) >= 2 {
		c.Lat, c.Lon, c.HasCoordinates = r.LatLng[0], r.LatLng[1], true
	}
	if len(r.Capital) > 0 {
		c.Capital = r.Capital[0]
	}
	for code := range r.Currencies {
		c.Currencies = append(c.Currencies, code)
	}
	sort.Strings(c.Currencies)
	c.CallingCode = callingCode(r.IDD.Root, r.IDD.Suffixes)
	return c
}

// callingCode joins the root with its suffix when there is exactly one.
// Countries sharing a root across many suffixes (+1) get the root alone.
func callingCode(root string, suffixes []string) string {
	if root == "" {
		return ""
	}
	if len(suffixes) == 1 {
		return root + suffixes[0]
	}
	return root
}

// CountriesClient talks to RestCountries.
type CountriesClient struct {
	base string
	ep   *endpoint
}

func NewCountriesClient(base string, opts Options) *CountriesClient {
	return &CountriesClient{base: strings.TrimRight(base, "/"), ep: newEndpoint("restcountries", opts)}
}

// ListRegion returns the common names of the countries in region, in upstream
// order with duplicates removed. When subregions is non-empty only countries
// in one of them are kept.
func (c *CountriesClient) ListRegion(ctx context.Context, region string, subregions []string) Outcome[[]string] {
	var records []countryRecord
	u := c.base + "/region/" + url.PathEscape(region)
	if err := c.ep.getJSON(ctx, u, &records); err != nil {
		return FromError[[]string](err)
	}

	keep := make(map[string]bool, len(subregions))
	for _, s := range subregions {
		keep[strings.ToLower(s)] = true
	}

	seen := make(map[string]bool, len(records))
	names := make([]string, 0, len(records))
	for _, r := range records {
		name := strings.TrimSpace(r.Name.Common)
		if name == "" || seen[name] {
			continue
		}
		if len(keep) > 0 && !keep[strings.ToLower(r.Subregion)] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return Found(names)
}

// Lookup resolves one country by its full name.
func (c *CountriesClient) Lookup(ctx context.Context, name string) Outcome[Country] {
	var records []countryRecord
	u := c.base + "/name/" + url.PathEscape(name) + "?fullText=true"
	if err := c.ep.getJSON(ctx, u, &records); err != nil {
		return FromError[Country](err)
	}
	if len(records) == 0 {
		return Missing[Country](fmt.Errorf("%w: restcountries: %s", ErrNotFound, name))
	}
	return Found(records[0].toCountry())
}
