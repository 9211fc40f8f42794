package cache

import (
	"fmt"

	"github.com/jaennil/guide_helper/backend/offline/pkg/config"
	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
)

// NewCache creates a cache instance based on the configured cache type
func NewCache(cfg config.Cache, redisCfg config.Redis, l logger.Logger) (ResourceCache, error) {
	switch cfg.Type {
	case "memory":
		l.Info("using memory cache", "max_entries", cfg.MemoryEntries)
		return NewMemoryCache(cfg.MemoryEntries), nil
	case "map":
		l.Info("using map cache")
		return NewMapCache(), nil
	case "sqlite":
		return NewSQLiteCache(cfg.SQLitePath, l)
	case "redis":
		return NewRedisCache(RedisConfig{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
			TTL:      redisCfg.TTL,
		}, l)
	case "file":
		return NewFilesystemCache(cfg.FileDir, l)
	case "disabled":
		l.Info("cache disabled")
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: memory, map, sqlite, redis, file, disabled)", ErrUnknownCacheType, cfg.Type)
	}
}
