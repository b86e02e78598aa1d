package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ebitech02/WanderWise/internal/cache"
	"github.com/ebitech02/WanderWise/internal/config"
	"github.com/ebitech02/WanderWise/internal/db"
	"github.com/ebitech02/WanderWise/internal/httpapi"
	"github.com/ebitech02/WanderWise/internal/migrate"
	"github.com/ebitech02/WanderWise/internal/modules/recommend"
	"github.com/ebitech02/WanderWise/internal/modules/recommend/service"
	"github.com/ebitech02/WanderWise/internal/modules/recommend/views"
	"github.com/ebitech02/WanderWise/internal/mqtt"
	"github.com/ebitech02/WanderWise/internal/upstream"
)

const (
	shutdownTimeout    = 10 * time.Second
	mqttConnectTimeout = 5 * time.Second
	maxPruneInterval   = 10 * time.Minute
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"upstreamTimeout", cfg.UpstreamTimeout,
		"fanoutWorkers", cfg.FanoutWorkers,
		"cacheBackend", cfg.CacheBackend,
		"cacheTTL", cfg.CacheTTL,
		"cacheMaxEntries", cfg.CacheMaxEntries,
		"mqttBroker", cfg.MQTTBroker,
		"mqttTopic", cfg.MQTTTopic,
	)
	if missing := cfg.MissingAPIKeys(); len(missing) > 0 {
		slog.Warn("api keys not set; dependent sections will show placeholders", "missing", missing)
	}

	if err := views.LoadTemplates(); err != nil {
		return err
	}
	cuisines, err := upstream.DefaultCuisines()
	if err != nil {
		return err
	}

	climateCache, closeCache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	logger := slog.Default()
	svc := service.NewService(
		service.SourcesFrom(upstream.NewClients(cfg, logger), cuisines),
		climateCache,
		cfg.FanoutWorkers,
		logger,
	)

	// The handler has to be set before Connect: the broker may deliver
	// retained messages right after CONNACK.
	var subscriber *mqtt.Subscriber
	mux := httpapi.NewMux(climateCache, cfg.StaticDir)
	if cfg.MQTTBroker != "" {
		subscriber = mqtt.NewSubscriber(cfg, logger)
		recommend.RegisterFeature(mux, svc, subscriber)

		connectCtx, connectCancel := context.WithTimeout(ctx, mqttConnectTimeout)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	} else {
		recommend.RegisterFeature(mux, svc, nil)
	}

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go pruneLoop(pruneCtx, climateCache, pruneInterval(cfg.CacheTTL))

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if subscriber != nil {
		slog.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// Migrate applies the cache schema to the configured database.
func Migrate(cfg config.Config) error {
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()
	return migrate.Run(dbConn)
}

// openCache builds the configured climate cache. The returned func releases
// its resources.
func openCache(cfg config.Config) (cache.ClimateCache, func(), error) {
	switch cfg.CacheBackend {
	case config.CacheBackendSQLite:
		dbConn, err := db.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if closeErr := db.Close(dbConn); closeErr != nil {
				slog.Error("db close", "error", closeErr)
			}
		}
		if err := migrate.Run(dbConn); err != nil {
			closeDB()
			return nil, nil, err
		}
		slog.Info("climate cache ready", "backend", "sqlite")
		return cache.NewSQLite(dbConn, cfg.CacheTTL, cfg.CacheMaxEntries, slog.Default()), closeDB, nil
	case config.CacheBackendMemory, "":
		slog.Info("climate cache ready", "backend", "memory")
		return cache.NewMemory(cfg.CacheTTL, cfg.CacheMaxEntries), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

func pruneInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > maxPruneInterval {
		return maxPruneInterval
	}
	return ttl
}

func pruneLoop(ctx context.Context, c cache.ClimateCache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.Prune(ctx)
			if err != nil {
				slog.Warn("climate cache prune failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("climate cache pruned", "removed", n)
			}
		}
	}
}
