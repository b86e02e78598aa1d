// Package cache stores climate labels per country with a TTL.
//
// Two backends implement ClimateCache: Memory, a bounded map guarded by a
// mutex, and SQLite, backed by the climate_cache table. Keys are country
// names compared case-insensitively.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/ebitech02/WanderWise/internal/climate"
)

type ClimateCache interface {
	Get(ctx context.Context, country string) (climate.Label, bool)
	Set(ctx context.Context, country string, label climate.Label) error
	Invalidate(ctx context.Context, country string) error
	Clear(ctx context.Context) error
	// Prune drops expired entries and reports how many were removed.
	Prune(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
}

type Stats struct {
	Backend   string        `json:"backend"`
	Entries   int64         `json:"entries"`
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Evictions int64         `json:"evictions"`
	TTL       time.Duration `json:"ttl_ns"`
}

func normalizeKey(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}
