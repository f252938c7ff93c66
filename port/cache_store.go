package port

import (
	"context"
	"time"
)

// CacheStore is a key/value store with per-entry expiration. Redis in
// production, in-memory in tests. The store handles concurrent access on
// its own; callers do not coordinate. No consistency guarantee exists
// between concurrent Get/Set on one key: last writer wins, and entries
// are always re-derivable from the search backend.
type CacheStore interface {
	// Get returns the stored value, or nil when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteMatching removes every entry whose key starts with prefix and
	// returns the number deleted.
	DeleteMatching(ctx context.Context, prefix string) (int64, error)
}
