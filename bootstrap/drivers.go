package bootstrap

import (
	"context"
	"fmt"
	"time"

	"history-server/config"
	"history-server/driver"
	"history-server/gateway"
	"history-server/logger"
	"history-server/port"

	"github.com/cenkalti/backoff/v5"
	"github.com/meilisearch/meilisearch-go"
)

// appDrivers bundles the infrastructure drivers with a single close hook.
type appDrivers struct {
	search   *driver.MeilisearchDriver
	cache    *driver.RedisCacheDriver
	database *driver.DatabaseDriver
	close    func()
}

func initDrivers(ctx context.Context, cfg *config.Config) (*appDrivers, error) {
	msClient, err := initMeilisearchClient(cfg.Search)
	if err != nil {
		return nil, err
	}
	searchDriver := driver.NewMeilisearchDriver(msClient, cfg.Search.Index)

	dbDriver, err := driver.NewDatabaseDriver(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}
	if err := dbDriver.EnsureSchema(ctx); err != nil {
		dbDriver.Close()
		return nil, fmt.Errorf("database schema: %w", err)
	}

	// The cache is optional by design: a missing Redis degrades every
	// request to a backend round-trip, never to a failure.
	var cacheDriver *driver.RedisCacheDriver
	if cfg.Cache.Enabled {
		cacheDriver, err = driver.NewRedisCacheDriver(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.Logger.Warn("Redis unavailable, running without search cache", "err", err)
			cacheDriver = nil
		}
	} else {
		logger.Logger.Info("search cache disabled by configuration")
	}

	return &appDrivers{
		search:   searchDriver,
		cache:    cacheDriver,
		database: dbDriver,
		close: func() {
			if cacheDriver != nil {
				_ = cacheDriver.Close()
			}
			dbDriver.Close()
		},
	}, nil
}

// initMeilisearchClient initializes the Meilisearch client, retrying with
// exponential backoff until the engine reports healthy.
func initMeilisearchClient(cfg config.SearchConfig) (meilisearch.ServiceManager, error) {
	logger.Logger.Info("Connecting to Meilisearch", "host", cfg.Host)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.RetryDelay
	bo.MaxInterval = time.Minute

	var msClient meilisearch.ServiceManager
	for attempt := 1; ; attempt++ {
		msClient = meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))

		_, healthErr := msClient.Health()
		if healthErr == nil {
			logger.Logger.Info("Connected to Meilisearch successfully")
			return msClient, nil
		}

		if attempt >= cfg.MaxRetries {
			return nil, fmt.Errorf("failed to connect to Meilisearch after %d attempts: %w", cfg.MaxRetries, healthErr)
		}

		delay := bo.NextBackOff()
		logger.Logger.Warn("Meilisearch not ready, retrying",
			"attempt", attempt, "max", cfg.MaxRetries, "retry_in", delay, "err", healthErr)
		time.Sleep(delay)
	}
}

// cacheStoreOrNil converts a possibly-nil gateway into a nil interface so
// the usecase's nil check works.
func cacheStoreOrNil(g *gateway.CacheStoreGateway) port.CacheStore {
	if g == nil {
		return nil
	}
	return g
}
