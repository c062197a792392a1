package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr()+"/0", ttl)
	if err != nil {
		t.Fatalf("connect to in-process redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url", 0); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewRedisCacheFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisCache(context.Background(), "redis://"+addr, 0); err == nil {
		t.Fatal("expected ping error for a stopped server")
	}
}

func TestNewRedisCacheWithClientClampsTTL(t *testing.T) {
	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), -time.Second)
	defer c.Close()
	if c.ttl != 0 {
		t.Fatalf("expected negative ttl to clamp to 0, got %s", c.ttl)
	}
	if got := c.key(datasetKey); got != "poll-position:dataset" {
		t.Fatalf("unexpected key %s", got)
	}
}

func TestRedisCacheMiss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Dataset(ctx); ok || err != nil {
		t.Fatalf("expected dataset miss, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := c.Seasons(ctx); ok || err != nil {
		t.Fatalf("expected seasons miss, got ok=%v err=%v", ok, err)
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	rows := []polls.RawPollRow{{Season: 2024, SeasonType: "regular", Poll: polls.PollAPTop25, School: "Oregon", Rank: 1, Logos: []string{"a.png"}}}
	if err := c.SetDataset(ctx, rows); err != nil {
		t.Fatalf("set dataset: %v", err)
	}
	got, ok, err := c.Dataset(ctx)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Fatalf("dataset mismatch (-want +got):\n%s", diff)
	}

	if err := c.SetSeasons(ctx, []polls.Season{2024, 2023}); err != nil {
		t.Fatalf("set seasons: %v", err)
	}
	seasons, ok, err := c.Seasons(ctx)
	if err != nil || !ok {
		t.Fatalf("expected seasons hit, got ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff([]polls.Season{2024, 2023}, seasons); diff != "" {
		t.Fatalf("seasons mismatch (-want +got):\n%s", diff)
	}
	if !mr.Exists("poll-position:seasons") || !mr.Exists("poll-position:dataset") {
		t.Fatalf("expected prefixed keys, got %v", mr.Keys())
	}
}

func TestRedisCacheEmptySeasonsIsAHit(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.SetSeasons(ctx, nil); err != nil {
		t.Fatalf("set seasons: %v", err)
	}
	if raw, _ := mr.Get("poll-position:seasons"); raw != "[]" {
		t.Fatalf("expected nil seasons stored as [], got %q", raw)
	}
	seasons, ok, err := c.Seasons(ctx)
	if err != nil || !ok || seasons == nil || len(seasons) != 0 {
		t.Fatalf("expected cached empty seasons, got %v ok=%v err=%v", seasons, ok, err)
	}

	if err := c.SetDataset(ctx, nil); err != nil {
		t.Fatalf("set dataset: %v", err)
	}
	rows, ok, err := c.Dataset(ctx)
	if err != nil || !ok || rows == nil || len(rows) != 0 {
		t.Fatalf("expected cached empty dataset, got %v ok=%v err=%v", rows, ok, err)
	}
}

func TestRedisCacheAppliesTTL(t *testing.T) {
	c, mr := newTestCache(t, 15*time.Minute)
	ctx := context.Background()

	if err := c.SetSeasons(ctx, []polls.Season{2024}); err != nil {
		t.Fatalf("set seasons: %v", err)
	}
	if ttl := mr.TTL("poll-position:seasons"); ttl != 15*time.Minute {
		t.Fatalf("expected 15m ttl, got %s", ttl)
	}

	mr.FastForward(16 * time.Minute)
	if _, ok, err := c.Seasons(ctx); ok || err != nil {
		t.Fatalf("expected expired entry to miss, got ok=%v err=%v", ok, err)
	}
}

func TestRedisCacheZeroTTLKeepsEntries(t *testing.T) {
	c, mr := newTestCache(t, 0)
	if err := c.SetDataset(context.Background(), []polls.RawPollRow{}); err != nil {
		t.Fatalf("set dataset: %v", err)
	}
	if ttl := mr.TTL("poll-position:dataset"); ttl != 0 {
		t.Fatalf("expected no expiry, got %s", ttl)
	}
}

func TestRedisCacheDecodeError(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	if err := mr.Set("poll-position:dataset", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := c.Dataset(context.Background()); ok || err == nil {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}

func TestRedisCacheDelete(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	_ = c.SetSeasons(ctx, []polls.Season{2024})
	_ = c.SetDataset(ctx, []polls.RawPollRow{})

	if err := c.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected keys removed, got %v", mr.Keys())
	}
}

func TestRedisCacheReadErrorWhenServerGone(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()
	if _, ok, err := c.Seasons(context.Background()); ok || err == nil {
		t.Fatalf("expected read error, got ok=%v err=%v", ok, err)
	}
}
