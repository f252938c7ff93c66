package driver

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCacheDriver stores cache entries in Redis. Expiration is handled
// by Redis itself via SET with TTL.
type RedisCacheDriver struct {
	client *redis.Client
}

// NewRedisCacheDriver parses redisURL and verifies connectivity.
func NewRedisCacheDriver(ctx context.Context, redisURL string) (*RedisCacheDriver, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, &DriverError{Op: "NewRedisCacheDriver", Err: err.Error()}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, &DriverError{Op: "NewRedisCacheDriver", Err: "ping failed: " + err.Error()}
	}

	return &RedisCacheDriver{client: client}, nil
}

func (d *RedisCacheDriver) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := d.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &DriverError{Op: "Get", Err: err.Error()}
	}
	return value, nil
}

func (d *RedisCacheDriver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := d.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return &DriverError{Op: "Set", Err: err.Error()}
	}
	return nil
}

// DeleteMatching scans for keys under prefix and deletes them in batches.
// SCAN avoids blocking Redis the way KEYS would.
func (d *RedisCacheDriver) DeleteMatching(ctx context.Context, prefix string) (int64, error) {
	var deleted int64

	iter := d.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	batch := make([]string, 0, 100)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := d.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return deleted, &DriverError{Op: "DeleteMatching", Err: err.Error()}
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, &DriverError{Op: "DeleteMatching", Err: err.Error()}
	}
	if err := flush(); err != nil {
		return deleted, &DriverError{Op: "DeleteMatching", Err: err.Error()}
	}

	return deleted, nil
}

// Close releases the underlying Redis connection.
func (d *RedisCacheDriver) Close() error {
	return d.client.Close()
}
