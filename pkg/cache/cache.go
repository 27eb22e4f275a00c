// Package cache provides a best-effort Redis read-through cache for serialized snapshots.
// Every operation degrades to a miss or no-op on failure; the cache is never
// a source of request errors.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mwhitlock/prism/pkg/lifecycle"
)

// System manages cache entries and lifecycle coordination.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Put stores a serialized snapshot under the given key with the configured TTL.
	// Failures are logged and swallowed.
	Put(ctx context.Context, key string, snapshot []byte)
	// Get returns the snapshot stored under the given key, or (nil, false) on
	// a miss, an expired entry, or any underlying failure.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Invalidate removes the entry under the given key. Failures are logged and swallowed.
	Invalidate(ctx context.Context, key string)
	// ClearAll removes every entry under the cache's key prefix. Administrative
	// operation; not on any hot path.
	ClearAll(ctx context.Context) error
	// Key builds the namespaced cache key for an identifier.
	Key(id int64) string
}

type redisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a cache system with the given configuration.
// The client connects lazily; Start verifies connectivity.
func New(cfg *Config, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &redisCache{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTLDuration(),
		logger: logger.With("system", "cache"),
	}
}

func (c *redisCache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting cache system")

	lc.OnStartup(func() {
		if err := c.client.Ping(lc.Context()).Err(); err != nil {
			c.logger.Error("cache ping failed", "error", err)
			return
		}
		c.logger.Info("cache connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := c.client.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}
		c.logger.Info("cache connection closed")
	})

	return nil
}

func (c *redisCache) Put(ctx context.Context, key string, snapshot []byte) {
	if err := c.client.Set(ctx, key, snapshot, c.ttl).Err(); err != nil {
		c.logger.Warn("cache put failed", "key", key, "error", err)
	}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (c *redisCache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", "key", key, "error", err)
	}
}

func (c *redisCache) ClearAll(ctx context.Context) error {
	var deleted int64

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("cache delete failed", "key", iter.Val(), "error", err)
			continue
		}
		deleted++
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}

	c.logger.Info("cache cleared", "prefix", c.prefix, "deleted", deleted)
	return nil
}

func (c *redisCache) Key(id int64) string {
	return fmt.Sprintf("%s%d", c.prefix, id)
}
