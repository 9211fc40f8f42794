package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
	"github.com/jaennil/guide_helper/backend/offline/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "resource:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL applies to entries without their own expiry; 0 keeps them forever.
	TTL time.Duration
}

func NewRedisCache(cfg RedisConfig, l logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	l.Info("redis cache initialized", "addr", cfg.Addr, "db", cfg.DB, "ttl", cfg.TTL)

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
		logger: l,
	}, nil
}

var _ ResourceCache = (*RedisCache)(nil)

func (c *RedisCache) keyFor(k resource.Key) string {
	return redisKeyPrefix + k.Digest()
}

// ttlFor is the time left until the entry's own expiry, or the configured
// TTL for entries that never expire. ok is false for already expired entries.
func (c *RedisCache) ttlFor(v Entry, now time.Time) (ttl time.Duration, ok bool) {
	if v.Expires.IsZero() {
		return c.ttl, true
	}
	left := v.Expires.Sub(now)
	return left, left > 0
}

func (c *RedisCache) Get(ctx context.Context, k resource.Key) (Entry, bool, error) {
	defer observe("redis", "get", time.Now())

	key := c.keyFor(k)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		metrics.CacheErrors.WithLabelValues("redis_get").Inc()
		return Entry{}, false, fmt.Errorf("redis get error: %w", err)
	}

	return Entry{Data: data}, true, nil
}

func (c *RedisCache) Set(ctx context.Context, k resource.Key, v Entry) error {
	defer observe("redis", "set", time.Now())

	ttl, ok := c.ttlFor(v, time.Now())
	if !ok {
		c.logger.Debug("redis cache skipping expired entry", "key", k.String())
		return nil
	}

	if err := c.client.Set(ctx, c.keyFor(k), v.Data, ttl).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("redis_set").Inc()
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 500).Iterator()

	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del error: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan error: %w", err)
	}

	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del error: %w", err)
		}
	}

	c.logger.Info("redis cache cleared")
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
