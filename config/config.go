package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration, loaded once at startup and
// passed explicitly to constructors. Environment variables follow the
// APP__SECTION__KEY convention, e.g. APP__CACHE__TTL_SECONDS.
type Config struct {
	Server   ServerConfig
	Search   SearchConfig
	Cache    CacheConfig
	Database DatabaseConfig
}

type ServerConfig struct {
	Host              string
	Port              int
	ReadHeaderTimeout time.Duration
}

// SearchConfig points at the Meilisearch instance backing the history index.
type SearchConfig struct {
	Host       string
	APIKey     string
	Index      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// CacheConfig controls the read-through search cache.
type CacheConfig struct {
	Enabled bool
	// RedisURL addresses the cache store, e.g. redis://localhost:6379/0.
	RedisURL string
	// TTL is the expiration for populated entries.
	TTL time.Duration
	// StoreTimeout bounds each cache get/set so a hung store degrades to
	// a miss instead of stalling requests.
	StoreTimeout time.Duration
}

type DatabaseConfig struct {
	// URL is the Postgres connection string for normalization rules.
	URL string
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:              getEnvOrDefault("APP__SERVER__HOST", "0.0.0.0"),
			Port:              intEnv("APP__SERVER__PORT", 8080),
			ReadHeaderTimeout: 5 * time.Second,
		},
		Search: SearchConfig{
			Host:       getEnvRequired("APP__SEARCH__HOST"),
			APIKey:     getEnvOrDefault("APP__SEARCH__API_KEY", ""),
			Index:      getEnvOrDefault("APP__SEARCH__INDEX", "history"),
			Timeout:    15 * time.Second,
			MaxRetries: 5,
			RetryDelay: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:      boolEnv("APP__CACHE__ENABLED", true),
			RedisURL:     getEnvOrDefault("APP__CACHE__REDIS_URL", "redis://localhost:6379/0"),
			TTL:          time.Duration(intEnv("APP__CACHE__TTL_SECONDS", 120)) * time.Second,
			StoreTimeout: time.Duration(intEnv("APP__CACHE__TIMEOUT_MS", 500)) * time.Millisecond,
		},
		Database: DatabaseConfig{
			URL: getEnvRequired("APP__DATABASE__URL"),
		},
	}

	if cfg.Cache.TTL <= 0 {
		return nil, fmt.Errorf("APP__CACHE__TTL_SECONDS must be positive")
	}
	if cfg.Cache.StoreTimeout <= 0 {
		return nil, fmt.Errorf("APP__CACHE__TIMEOUT_MS must be positive")
	}

	slog.Info("Configuration loaded",
		"server_addr", cfg.Server.Addr(),
		"search_host", cfg.Search.Host,
		"search_index", cfg.Search.Index,
		"cache_enabled", cfg.Cache.Enabled,
		"cache_ttl", cfg.Cache.TTL,
	)

	return cfg, nil
}

func getEnvRequired(key string) string {
	// Check for _FILE suffix (Docker Secrets)
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func boolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return defaultVal
}
