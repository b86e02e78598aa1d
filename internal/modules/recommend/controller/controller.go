package controller

import (
	"context"
	"net/http"

	"github.com/ebitech02/WanderWise/internal/cache"
	"github.com/ebitech02/WanderWise/internal/climate"
	"github.com/ebitech02/WanderWise/internal/modules/recommend/types"
)

// Recommender is the part of the recommend service the handlers use.
type Recommender interface {
	Recommend(ctx context.Context, continent types.Continent, target climate.Label) (types.Result, error)
	CacheStats(ctx context.Context) (cache.Stats, error)
	InvalidateClimate(ctx context.Context, country, source string) error
	ClearClimate(ctx context.Context, source string) error
}

type RecommendController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type recommendControllerImpl struct {
	service Recommender
}

func NewRecommendController(service Recommender) RecommendController {
	return &recommendControllerImpl{service: service}
}

func (c *recommendControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /form", c.handleForm)
	mux.HandleFunc("POST /submit_form", c.handleSubmitForm)
	mux.HandleFunc("GET /recommendations", c.handleRecommendations)

	mux.HandleFunc("GET /api/v1/recommendations", c.handleRecommendationsAPI)
	mux.HandleFunc("GET /api/v1/cache/climate", c.handleCacheStats)
	mux.HandleFunc("DELETE /api/v1/cache/climate", c.handleCacheClear)
	mux.HandleFunc("DELETE /api/v1/cache/climate/{country}", c.handleCacheInvalidate)
}
