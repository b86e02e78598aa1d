package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StaticDir is the absolute path to the directory served at /static/.
	// Set via STATIC_DIR (relative paths are resolved against the process working directory at startup).
	StaticDir string

	OpenWeatherAPIKey string
	OpenTripMapAPIKey string
	SpoonacularAPIKey string

	OpenWeatherURL   string
	RestCountriesURL string
	OpenTripMapURL   string
	WikivoyageURL    string
	SpoonacularURL   string

	UpstreamTimeout time.Duration
	FanoutWorkers   int

	CacheBackend    string
	CacheTTL        time.Duration
	CacheMaxEntries int

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	SQLiteLogQueries      bool

	// MQTTBroker empty disables cache invalidation over MQTT.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := envString("HTTP_ADDR", ":8080")

	staticDir := envString("STATIC_DIR", "static")
	staticDir, err = filepath.Abs(staticDir)
	if err != nil {
		return Config{}, fmt.Errorf("STATIC_DIR %q: %w", staticDir, err)
	}

	upstreamTimeout, err := envDuration("UPSTREAM_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	if upstreamTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: must be > 0", upstreamTimeout)
	}

	workers, err := envInt("FANOUT_WORKERS", "4")
	if err != nil {
		return Config{}, err
	}
	if workers < 1 || workers > 32 {
		return Config{}, fmt.Errorf("invalid FANOUT_WORKERS %d (allowed: 1-32)", workers)
	}

	cacheBackend := strings.ToLower(envString("CACHE_BACKEND", CacheBackendMemory))
	switch cacheBackend {
	case CacheBackendMemory, CacheBackendSQLite:
	default:
		return Config{}, fmt.Errorf("invalid CACHE_BACKEND %q (allowed: memory, sqlite)", cacheBackend)
	}

	cacheTTL, err := envDuration("CACHE_TTL", "6h")
	if err != nil {
		return Config{}, err
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("invalid CACHE_TTL %q: must be > 0", cacheTTL)
	}

	cacheMaxEntries, err := envInt("CACHE_MAX_ENTRIES", "1024")
	if err != nil {
		return Config{}, err
	}
	if cacheMaxEntries < 1 {
		return Config{}, fmt.Errorf("invalid CACHE_MAX_ENTRIES %d: must be > 0", cacheMaxEntries)
	}

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", "1")
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", "1")
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}
	logQueries, err := envBool("SQLITE_LOG_QUERIES", "false")
	if err != nil {
		return Config{}, err
	}

	mqttPort, err := envInt("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:    appEnv,
		LogLevel:  level,
		HTTPAddr:  httpAddr,
		StaticDir: staticDir,

		OpenWeatherAPIKey: strings.TrimSpace(os.Getenv("API_KEY_OPENWEATHER")),
		OpenTripMapAPIKey: strings.TrimSpace(os.Getenv("API_KEY_OPENTRIPMAP")),
		SpoonacularAPIKey: strings.TrimSpace(os.Getenv("API_KEY_SPOONACULAR")),

		OpenWeatherURL:   envString("OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5/weather"),
		RestCountriesURL: strings.TrimRight(envString("RESTCOUNTRIES_URL", "https://restcountries.com/v3.1"), "/"),
		OpenTripMapURL:   envString("OPENTRIPMAP_URL", "https://api.opentripmap.com/0.1/en/places/radius"),
		WikivoyageURL:    envString("WIKIVOYAGE_URL", "https://en.wikivoyage.org/w/api.php"),
		SpoonacularURL:   envString("SPOONACULAR_URL", "https://api.spoonacular.com/recipes/complexSearch"),

		UpstreamTimeout: upstreamTimeout,
		FanoutWorkers:   workers,

		CacheBackend:    cacheBackend,
		CacheTTL:        cacheTTL,
		CacheMaxEntries: cacheMaxEntries,

		SQLiteDriver:          envString("DB_DRIVER", "sqlite3"),
		SQLiteDSN:             strings.TrimSpace(os.Getenv("DB_DSN")),
		SQLitePath:            envString("SQLITE_PATH", "file:wanderwise?mode=memory&cache=shared"),
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogQueries:      logQueries,

		MQTTBroker:   strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTPort:     mqttPort,
		MQTTClientID: envString("MQTT_CLIENT_ID", "wanderwise-server"),
		MQTTTopic:    envString("MQTT_TOPIC", "wanderwise/cache/invalidate"),
	}, nil
}

// MissingAPIKeys names the credential variables left unset. Calls that need
// them fail at request time.
func (c Config) MissingAPIKeys() []string {
	var out []string
	if c.OpenWeatherAPIKey == "" {
		out = append(out, "API_KEY_OPENWEATHER")
	}
	if c.OpenTripMapAPIKey == "" {
		out = append(out, "API_KEY_OPENTRIPMAP")
	}
	if c.SpoonacularAPIKey == "" {
		out = append(out, "API_KEY_SPOONACULAR")
	}
	return out
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key, def string) (int, error) {
	s := envString(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envDuration(key, def string) (time.Duration, error) {
	s := envString(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func envBool(key, def string) (bool, error) {
	s := envString(key, def)
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
