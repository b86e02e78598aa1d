package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ebitech02/WanderWise/internal/climate"
)

type weatherResponse struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// WeatherClient reads current conditions from OpenWeather.
type WeatherClient struct {
	base   string
	apiKey string
	ep     *endpoint
}

func NewWeatherClient(base, apiKey string, opts Options) *WeatherClient {
	return &WeatherClient{base: base, apiKey: apiKey, ep: newEndpoint("openweather", opts)}
}

// Current returns the temperature and description for a country's name as
// OpenWeather resolves it. A response missing main.temp or weather[0] is
// Unavailable and wraps climate.ErrDataUnavailable.
func (c *WeatherClient) Current(ctx context.Context, country string) Outcome[climate.Sample] {
	q := url.Values{}
	q.Set("q", country)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	var resp weatherResponse
	if err := c.ep.getJSON(ctx, c.base+"?"+q.Encode(), &resp); err != nil {
		return FromError[climate.Sample](err)
	}

	if resp.Main == nil || resp.Main.Temp == nil {
		return Failed[climate.Sample](fmt.Errorf("%w: %s: missing main.temp", climate.ErrDataUnavailable, country))
	}
	if len(resp.Weather) == 0 {
		return Failed[climate.Sample](fmt.Errorf("%w: %s: missing weather[0]", climate.ErrDataUnavailable, country))
	}

	return Found(climate.Sample{
		Country:      country,
		TemperatureC: *resp.Main.Temp,
		Description:  strings.ToLower(resp.Weather[0].Description),
	})
}
