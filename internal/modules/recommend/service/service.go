package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ebitech02/WanderWise/internal/cache"
	"github.com/ebitech02/WanderWise/internal/climate"
	"github.com/ebitech02/WanderWise/internal/metrics"
	"github.com/ebitech02/WanderWise/internal/modules/recommend/types"
	"github.com/ebitech02/WanderWise/internal/upstream"
)

// ErrListingUnavailable is returned when the candidate countries of a region
// cannot be listed.
var ErrListingUnavailable = errors.New("country listing unavailable")

// climateLookupTimeout bounds a shared climate lookup, which outlives the
// caller that started it.
const climateLookupTimeout = 30 * time.Second

const (
	noPlaces      = "No notable places found. Please check with a local"
	noDescription = "Check the official website for more information."
	unavailable   = "Information currently unavailable."
	noFlag        = "No flag available"
	noCapital     = "No capital available"
	noCurrency    = "No currency available"
	noCallingCode = "No calling code available"
)

type WeatherSource interface {
	Current(ctx context.Context, country string) upstream.Outcome[climate.Sample]
}

type CountrySource interface {
	ListRegion(ctx context.Context, region string, subregions []string) upstream.Outcome[[]string]
	Lookup(ctx context.Context, name string) upstream.Outcome[upstream.Country]
}

type PlacesSource interface {
	Nearby(ctx context.Context, lat, lon float64) upstream.Outcome[[]string]
}

type DescriptionSource interface {
	Description(ctx context.Context, title string) upstream.Outcome[string]
}

type RecipeSource interface {
	ByCuisine(ctx context.Context, cuisine string) upstream.Outcome[[]string]
}

type CuisineTable interface {
	Lookup(country string) (string, bool)
}

// Sources are the upstream dependencies of the pipeline.
type Sources struct {
	Weather   WeatherSource
	Countries CountrySource
	Places    PlacesSource
	Wiki      DescriptionSource
	Recipes   RecipeSource
	Cuisines  CuisineTable
}

// SourcesFrom adapts the upstream clients and the cuisine table.
func SourcesFrom(c *upstream.Clients, cuisines *upstream.Cuisines) Sources {
	return Sources{
		Weather:   c.Weather,
		Countries: c.Countries,
		Places:    c.Places,
		Wiki:      c.Wiki,
		Recipes:   c.Recipes,
		Cuisines:  cuisines,
	}
}

type Service struct {
	src     Sources
	cache   cache.ClimateCache
	workers int
	logger  *slog.Logger
	flight  singleflight.Group
}

func NewService(src Sources, climateCache cache.ClimateCache, workers int, logger *slog.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		src:     src,
		cache:   climateCache,
		workers: workers,
		logger:  logger.With("component", "recommend"),
	}
}

type disposition int

const (
	filtered disposition = iota
	kept
	skipped
)

func (d disposition) String() string {
	switch d {
	case kept:
		return "kept"
	case skipped:
		return "skipped"
	default:
		return "filtered"
	}
}

type slot struct {
	bundle types.CountryBundle
	disp   disposition
}

// Recommend lists the countries of continent's region and returns a bundle
// for each one whose current climate is target, in listing order. Only a
// failure to list the region is returned as an error; other upstream
// failures skip a country or degrade one of its sections.
func (s *Service) Recommend(ctx context.Context, continent types.Continent, target climate.Label) (types.Result, error) {
	res := types.Result{
		Continent: continent.Name,
		Region:    continent.Region,
		Climate:   target,
		Countries: []types.CountryBundle{},
	}

	listing := s.src.Countries.ListRegion(ctx, continent.Region, continent.Subregions)
	switch listing.Status {
	case upstream.Success:
	case upstream.NotFound:
		s.logger.Info("region has no countries", "region", continent.Region)
		return res, nil
	default:
		return types.Result{}, fmt.Errorf("%w: %s: %v", ErrListingUnavailable, continent.Region, listing.Err)
	}

	names := dedupe(listing.Value)
	res.Candidates = len(names)
	slots := make([]slot, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, name := range names {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			slots[i] = s.evaluate(gctx, name, target)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return types.Result{}, err
	}

	for _, sl := range slots {
		metrics.RecommendationCountries.WithLabelValues(sl.disp.String()).Inc()
		switch sl.disp {
		case kept:
			res.Countries = append(res.Countries, sl.bundle)
		case skipped:
			res.Skipped++
		}
	}

	s.logger.Info("recommendations built",
		"continent", continent.Name,
		"climate", target.String(),
		"candidates", res.Candidates,
		"kept", len(res.Countries),
		"skipped", res.Skipped,
	)
	return res, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func (s *Service) evaluate(ctx context.Context, name string, target climate.Label) slot {
	meta := s.src.Countries.Lookup(ctx, name)
	if !meta.OK() {
		s.logger.Warn("skipping country: metadata lookup failed", "country", name, "status", meta.Status.String(), "error", meta.Err)
		return slot{disp: skipped}
	}

	label := s.Climate(ctx, name)
	if !label.OK() {
		s.logger.Warn("skipping country: climate lookup failed", "country", name, "status", label.Status.String(), "error", label.Err)
		return slot{disp: skipped}
	}

	if label.Value != target || !meta.Value.HasCoordinates {
		return slot{disp: filtered}
	}
	return slot{bundle: s.assemble(ctx, name, meta.Value, label.Value), disp: kept}
}

// Climate classifies country's current weather, served from the cache when
// possible. Concurrent lookups of the same country share one upstream call.
// The shared call runs detached from any one caller, so a caller that gives
// up does not fail the others waiting on it. Only definite labels are cached.
func (s *Service) Climate(ctx context.Context, country string) upstream.Outcome[climate.Label] {
	if label, ok := s.cache.Get(ctx, country); ok {
		metrics.ClimateCacheLookups.WithLabelValues("hit").Inc()
		return upstream.Found(label)
	}
	metrics.ClimateCacheLookups.WithLabelValues("miss").Inc()

	key := strings.ToLower(strings.TrimSpace(country))
	ch := s.flight.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), climateLookupTimeout)
		defer cancel()
		return s.lookupClimate(lookupCtx, country), nil
	})
	select {
	case r := <-ch:
		return r.Val.(upstream.Outcome[climate.Label])
	case <-ctx.Done():
		return upstream.Failed[climate.Label](fmt.Errorf("%w: %s: %w", upstream.ErrUnavailable, country, ctx.Err()))
	}
}

func (s *Service) lookupClimate(ctx context.Context, country string) upstream.Outcome[climate.Label] {
	sample := s.src.Weather.Current(ctx, country)
	if !sample.OK() {
		return upstream.Outcome[climate.Label]{Status: sample.Status, Err: sample.Err}
	}
	label := sample.Value.Classify()
	if label == climate.Unknown {
		return upstream.Failed[climate.Label](fmt.Errorf("%w: %s: unclassifiable reading", climate.ErrDataUnavailable, country))
	}
	if err := s.cache.Set(ctx, country, label); err != nil {
		s.logger.Warn("climate cache write failed", "country", country, "error", err)
	}
	return upstream.Found(label)
}

func (s *Service) assemble(ctx context.Context, name string, c upstream.Country, label climate.Label) types.CountryBundle {
	b := types.CountryBundle{
		Name:        name,
		Climate:     label,
		FlagURL:     c.FlagURL,
		Capital:     c.Capital,
		Currency:    strings.Join(c.Currencies, ", "),
		CallingCode: c.CallingCode,
	}
	degrade := func(section string) { b.Degraded = append(b.Degraded, section) }

	places := s.src.Places.Nearby(ctx, c.Lat, c.Lon)
	switch places.Status {
	case upstream.Success:
		b.NotablePlaces = places.Value
	case upstream.NotFound:
		b.NotablePlaces = []string{noPlaces}
		degrade("notable_places")
	default:
		b.NotablePlaces = []string{unavailable}
		degrade("notable_places")
	}

	desc := s.src.Wiki.Description(ctx, name)
	switch desc.Status {
	case upstream.Success:
		b.Description = desc.Value
	case upstream.NotFound:
		b.Description = noDescription
		degrade("description")
	default:
		b.Description = unavailable
		degrade("description")
	}

	var foodOK bool
	b.FoodRecommendations, foodOK = s.food(ctx, name)
	if !foodOK {
		degrade("food")
	}

	if b.FlagURL == "" {
		b.FlagURL = noFlag
		degrade("flag")
	}
	if b.Capital == "" {
		b.Capital = noCapital
		degrade("capital")
	}
	if b.Currency == "" {
		b.Currency = noCurrency
		degrade("currency")
	}
	if b.CallingCode == "" {
		b.CallingCode = noCallingCode
		degrade("calling_code")
	}
	return b
}

func (s *Service) food(ctx context.Context, country string) ([]string, bool) {
	cuisine, ok := s.src.Cuisines.Lookup(country)
	if !ok {
		return []string{fmt.Sprintf("No cuisine available for %s.", country)}, false
	}
	recipes := s.src.Recipes.ByCuisine(ctx, cuisine)
	switch recipes.Status {
	case upstream.Success:
		return recipes.Value, true
	case upstream.NotFound:
		return []string{fmt.Sprintf("No food recommendations found for %s cuisine. Please check with a local.", cuisine)}, false
	default:
		return []string{unavailable}, false
	}
}

// CacheStats reports the climate cache counters.
func (s *Service) CacheStats(ctx context.Context) (cache.Stats, error) {
	return s.cache.Stats(ctx)
}

// InvalidateClimate drops one country's cached label. source labels the
// metric (http, mqtt).
func (s *Service) InvalidateClimate(ctx context.Context, country, source string) error {
	if err := s.cache.Invalidate(ctx, country); err != nil {
		return err
	}
	metrics.ClimateCacheInvalidations.WithLabelValues(source, "one").Inc()
	s.logger.Info("climate cache entry invalidated", "country", country, "source", source)
	return nil
}

// ClearClimate drops every cached label.
func (s *Service) ClearClimate(ctx context.Context, source string) error {
	if err := s.cache.Clear(ctx); err != nil {
		return err
	}
	metrics.ClimateCacheInvalidations.WithLabelValues(source, "all").Inc()
	s.logger.Info("climate cache cleared", "source", source)
	return nil
}
