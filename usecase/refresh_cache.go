package usecase

import (
	"context"
	"log/slog"

	"history-server/domain"
	"history-server/normalize"
	"history-server/port"
)

// InvalidateSearchCacheUsecase clears every cached search result. This is
// a correctness safety valve independent of TTL: normalization rule
// changes can alter which canonical URL a query should match, so stale
// entries must be evictable on demand.
type InvalidateSearchCacheUsecase struct {
	cache port.CacheStore
}

func NewInvalidateSearchCacheUsecase(cache port.CacheStore) *InvalidateSearchCacheUsecase {
	return &InvalidateSearchCacheUsecase{cache: cache}
}

// Execute deletes every entry under the search-cache prefix and returns
// the number removed.
func (u *InvalidateSearchCacheUsecase) Execute(ctx context.Context) (int64, error) {
	if u.cache == nil {
		return 0, nil
	}
	return u.cache.DeleteMatching(ctx, domain.CacheKeyPrefix)
}

// RefreshCacheUsecase backs the refresh-cache admin endpoint: reload the
// normalizer's in-process rule cache, then drop all cached search results
// so queries re-evaluate under the new rules.
type RefreshCacheUsecase struct {
	normalizer *normalize.Normalizer
	invalidate *InvalidateSearchCacheUsecase
	logger     *slog.Logger
}

func NewRefreshCacheUsecase(normalizer *normalize.Normalizer, invalidate *InvalidateSearchCacheUsecase, logger *slog.Logger) *RefreshCacheUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshCacheUsecase{
		normalizer: normalizer,
		invalidate: invalidate,
		logger:     logger,
	}
}

// Execute returns the number of cache entries cleared.
func (u *RefreshCacheUsecase) Execute(ctx context.Context) (int64, error) {
	if u.normalizer != nil {
		u.normalizer.Refresh()
		u.logger.Info("normalization rule cache refreshed")
	}

	cleared, err := u.invalidate.Execute(ctx)
	if err != nil {
		return 0, err
	}
	u.logger.Info("search cache invalidated", "cleared", cleared)
	return cleared, nil
}
