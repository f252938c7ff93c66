package driver

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value    []byte
	deadline time.Time
}

// MemoryCacheDriver is an in-process cache store. It backs tests and
// single-node deployments that run without Redis.
type MemoryCacheDriver struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	// now is replaceable in tests to exercise expiry without sleeping
	now func() time.Time
}

func NewMemoryCacheDriver() *MemoryCacheDriver {
	return &MemoryCacheDriver{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (d *MemoryCacheDriver) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[key]
	if !ok {
		return nil, nil
	}
	if d.now().After(entry.deadline) {
		delete(d.entries, key)
		return nil, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

func (d *MemoryCacheDriver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = memoryEntry{
		value:    stored,
		deadline: d.now().Add(ttl),
	}
	return nil
}

func (d *MemoryCacheDriver) DeleteMatching(ctx context.Context, prefix string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var deleted int64
	for key := range d.entries {
		if strings.HasPrefix(key, prefix) {
			delete(d.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of stored entries, expired ones included.
func (d *MemoryCacheDriver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
