package upstream

import (
	"log/slog"

	"github.com/ebitech02/WanderWise/internal/config"
)

// Clients bundles one client per upstream service.
type Clients struct {
	Weather   *WeatherClient
	Countries *CountriesClient
	Places    *PlacesClient
	Wiki      *WikiClient
	Recipes   *RecipesClient
}

// NewClients builds every client from cfg. They share the logger and the
// per-call timeout; each keeps its own circuit breaker.
func NewClients(cfg config.Config, logger *slog.Logger) *Clients {
	opts := Options{Timeout: cfg.UpstreamTimeout, Logger: logger}
	return &Clients{
		Weather:   NewWeatherClient(cfg.OpenWeatherURL, cfg.OpenWeatherAPIKey, opts),
		Countries: NewCountriesClient(cfg.RestCountriesURL, opts),
		Places:    NewPlacesClient(cfg.OpenTripMapURL, cfg.OpenTripMapAPIKey, opts),
		Wiki:      NewWikiClient(cfg.WikivoyageURL, opts),
		Recipes:   NewRecipesClient(cfg.SpoonacularURL, cfg.SpoonacularAPIKey, opts),
	}
}
