package gateway

import (
	"context"
	"time"

	"history-server/domain"
)

// CacheDriver is the key/value store driver consumed by the gateway.
// Get returns nil for an absent or expired key.
type CacheDriver interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteMatching(ctx context.Context, prefix string) (int64, error)
}

// CacheStoreGateway wraps cache driver failures as CacheError. The search
// usecase absorbs these; they never reach the caller.
type CacheStoreGateway struct {
	driver CacheDriver
}

func NewCacheStoreGateway(d CacheDriver) *CacheStoreGateway {
	return &CacheStoreGateway{driver: d}
}

func (g *CacheStoreGateway) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := g.driver.Get(ctx, key)
	if err != nil {
		return nil, &domain.CacheError{Op: "Get", Err: err.Error()}
	}
	return value, nil
}

func (g *CacheStoreGateway) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := g.driver.Set(ctx, key, value, ttl); err != nil {
		return &domain.CacheError{Op: "Set", Err: err.Error()}
	}
	return nil
}

func (g *CacheStoreGateway) DeleteMatching(ctx context.Context, prefix string) (int64, error) {
	count, err := g.driver.DeleteMatching(ctx, prefix)
	if err != nil {
		return 0, &domain.CacheError{Op: "DeleteMatching", Err: err.Error()}
	}
	return count, nil
}
