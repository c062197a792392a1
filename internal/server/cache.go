package server

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/poll-position/internal/cache"
	"github.com/preston-bernstein/poll-position/internal/config"
	"github.com/preston-bernstein/poll-position/internal/loader"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/store"
)

var newRedisCache = func(ctx context.Context, cfg config.CacheConfig) (loader.Cache, func() error, error) {
	rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.TTL)
	if err != nil {
		return nil, nil, err
	}
	return rc, rc.Close, nil
}

// buildCache returns the memo cells and a close func. Redis failures fall back to memory.
func buildCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (loader.Cache, func() error) {
	noop := func() error { return nil }
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		c, closeFn, err := newRedisCache(ctx, cfg.Cache)
		if err != nil {
			logging.Warn(logger, "redis cache unavailable, falling back to memory", "error", err)
			return store.NewMemoryStore(), noop
		}
		logging.Info(logger, "using redis cache", slog.Duration("ttl", cfg.Cache.TTL))
		return c, closeFn
	case config.CacheMemory, "":
		return store.NewMemoryStore(), noop
	default:
		logging.Warn(logger, "unknown cache backend, falling back to memory", slog.String("backend", cfg.Cache.Backend))
		return store.NewMemoryStore(), noop
	}
}
