package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"history-server/domain"
	"history-server/port"
	appOtel "history-server/utils/otel"
)

// SearchHistoryConfig is the explicit cache configuration for the search
// usecase. No ambient defaults: bootstrap constructs it from config.Load.
type SearchHistoryConfig struct {
	// CacheEnabled skips the cache entirely when false.
	CacheEnabled bool
	// CacheTTL is the expiration applied to populated entries.
	CacheTTL time.Duration
	// StoreTimeout bounds every cache get/set. A slow or hung store
	// degrades to a miss instead of stalling the request.
	StoreTimeout time.Duration
}

// SearchHistoryUsecase serves history searches through a read-through,
// fail-open cache. Cache faults never surface to the caller; only
// InvalidQueryError and BackendError cross this boundary.
type SearchHistoryUsecase struct {
	backend port.SearchBackend
	cache   port.CacheStore
	cfg     SearchHistoryConfig
	logger  *slog.Logger

	// populating tracks detached population goroutines so tests and
	// shutdown can wait for them. The request path never joins it.
	populating sync.WaitGroup
}

func NewSearchHistoryUsecase(backend port.SearchBackend, cache port.CacheStore, cfg SearchHistoryConfig, logger *slog.Logger) *SearchHistoryUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHistoryUsecase{
		backend: backend,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}
}

// Execute validates the query, consults the cache, and falls through to
// the search backend on a miss. Non-empty backend results are written back
// asynchronously; empty results are never cached so fresh data is not
// shadowed by a cached "nothing yet".
func (u *SearchHistoryUsecase) Execute(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if !u.cfg.CacheEnabled || u.cache == nil {
		return u.backend.Search(ctx, query)
	}

	start := time.Now()
	key := domain.CacheKey(query)

	if result := u.lookup(ctx, key); result != nil {
		appOtel.RecordCacheHit(ctx)
		appOtel.RecordSearchDuration(ctx, time.Since(start).Seconds(), true)
		return result, nil
	}
	appOtel.RecordCacheMiss(ctx)

	result, err := u.backend.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	appOtel.RecordSearchDuration(ctx, time.Since(start).Seconds(), false)

	if len(result.Items) > 0 {
		u.populating.Add(1)
		go u.populate(context.WithoutCancel(ctx), key, result)
	}

	return result, nil
}

// lookup returns the cached result, or nil on a miss or any store fault.
func (u *SearchHistoryUsecase) lookup(ctx context.Context, key string) *domain.SearchResult {
	getCtx, cancel := context.WithTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	payload, err := u.cache.Get(getCtx, key)
	if err != nil {
		appOtel.RecordCacheError(ctx, "get")
		u.logger.Warn("cache get failed, treating as miss", "key", key, "err", err)
		return nil
	}
	if payload == nil {
		return nil
	}

	var result domain.SearchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		appOtel.RecordCacheError(ctx, "decode")
		u.logger.Warn("cache entry undecodable, treating as miss", "key", key, "err", err)
		return nil
	}
	return &result
}

// populate writes a result back to the cache. It runs detached from the
// request: a dropped client connection does not stop the write, and write
// failures are logged, never surfaced.
func (u *SearchHistoryUsecase) populate(ctx context.Context, key string, result *domain.SearchResult) {
	defer u.populating.Done()

	payload, err := json.Marshal(result)
	if err != nil {
		appOtel.RecordCacheError(ctx, "encode")
		u.logger.Warn("cache population skipped, encode failed", "key", key, "err", err)
		return
	}

	setCtx, cancel := context.WithTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	if err := u.cache.Set(setCtx, key, payload, u.cfg.CacheTTL); err != nil {
		appOtel.RecordCacheError(ctx, "set")
		u.logger.Warn("cache population failed", "key", key, "err", err)
	}
}

// WaitForPopulation blocks until in-flight cache writes finish. Used by
// graceful shutdown and by tests.
func (u *SearchHistoryUsecase) WaitForPopulation() {
	u.populating.Wait()
}
