package config

import "time"

// CacheConfig selects where the season list and aggregated dataset are memoized.
type CacheConfig struct {
	Backend  string
	RedisURL string
	TTL      time.Duration // redis only; zero keeps entries until evicted
}

func loadCache(base CacheConfig) CacheConfig {
	return CacheConfig{
		Backend:  envOrDefault(envCacheBackend, base.Backend),
		RedisURL: envOrDefault(envRedisURL, base.RedisURL),
		TTL:      durationEnvOrDefault(envCacheTTL, base.TTL),
	}
}
