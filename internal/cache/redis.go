package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

const (
	defaultKeyPrefix = "poll-position"
	seasonsKey       = "seasons"
	datasetKey       = "dataset"
	pingTimeout      = 5 * time.Second
)

// RedisCache stores the season list and dataset as JSON values so several
// processes can share one load.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache parses the URL, connects and verifies the connection.
// A zero ttl stores values without expiry.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rc := NewRedisCacheWithClient(redis.NewClient(opt), ttl)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rc.HealthCheck(pingCtx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rc, nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCache{client: client, prefix: defaultKeyPrefix, ttl: ttl}
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Seasons returns the cached season list.
func (rc *RedisCache) Seasons(ctx context.Context) ([]polls.Season, bool, error) {
	var seasons []polls.Season
	ok, err := rc.getJSON(ctx, seasonsKey, &seasons)
	if !ok || err != nil {
		return nil, false, err
	}
	if seasons == nil {
		seasons = []polls.Season{}
	}
	return seasons, true, nil
}

// SetSeasons stores the season list.
func (rc *RedisCache) SetSeasons(ctx context.Context, seasons []polls.Season) error {
	if seasons == nil {
		seasons = []polls.Season{}
	}
	return rc.setJSON(ctx, seasonsKey, seasons)
}

// Dataset returns the cached rows.
func (rc *RedisCache) Dataset(ctx context.Context) ([]polls.RawPollRow, bool, error) {
	var rows []polls.RawPollRow
	ok, err := rc.getJSON(ctx, datasetKey, &rows)
	if !ok || err != nil {
		return nil, false, err
	}
	if rows == nil {
		rows = []polls.RawPollRow{}
	}
	return rows, true, nil
}

// SetDataset stores the rows.
func (rc *RedisCache) SetDataset(ctx context.Context, rows []polls.RawPollRow) error {
	if rows == nil {
		rows = []polls.RawPollRow{}
	}
	return rc.setJSON(ctx, datasetKey, rows)
}

// Delete removes both cached values.
func (rc *RedisCache) Delete(ctx context.Context) error {
	return rc.client.Del(ctx, rc.key(seasonsKey), rc.key(datasetKey)).Err()
}

func (rc *RedisCache) key(name string) string {
	return rc.prefix + ":" + name
}

func (rc *RedisCache) getJSON(ctx context.Context, name string, dst any) (bool, error) {
	raw, err := rc.client.Get(ctx, rc.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", name, err)
	}
	return true, nil
}

func (rc *RedisCache) setJSON(ctx context.Context, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := rc.client.Set(ctx, rc.key(name), raw, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}
