// Package loader discovers seasons, fetches each season's latest poll and
// memoizes the filtered, season-stamped dataset for the process lifetime.
package loader

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/metrics"
	"github.com/preston-bernstein/poll-position/internal/providers"
	"github.com/preston-bernstein/poll-position/internal/store"
)

const (
	seasonsFlight = "seasons"
	datasetFlight = "dataset"
	sampleSize    = 3
)

// Cache holds the two memo cells. An empty season list is a valid cached value.
// A Cache may outlive the process, so only complete, non-degraded outcomes are
// written to it; degraded ones stay in the loader's process-local memo.
type Cache interface {
	Seasons(ctx context.Context) ([]polls.Season, bool, error)
	SetSeasons(ctx context.Context, seasons []polls.Season) error
	Dataset(ctx context.Context) ([]polls.RawPollRow, bool, error)
	SetDataset(ctx context.Context, rows []polls.RawPollRow) error
}

// Config tunes a Loader. Zero values fall back to sensible defaults.
type Config struct {
	FallbackSeason polls.Season
	Logger         *slog.Logger
	Metrics        *metrics.Recorder
}

// Loader is the poll data loader. It is safe for concurrent use.
type Loader struct {
	source   providers.Source
	memo     *store.MemoryStore
	cache    Cache
	fallback polls.Season
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time

	group singleflight.Group
	// set once discovery fell back; datasets built on it are never shared.
	fellBack atomic.Bool

	mu        sync.RWMutex
	report    LoadReport
	hasReport bool
}

// New builds a Loader. cache may be nil, in which case results live only in
// the process-local memo.
func New(source providers.Source, cache Cache, cfg Config) *Loader {
	fallback := cfg.FallbackSeason
	if fallback <= 0 {
		fallback = polls.DefaultFallbackSeason
	}
	return &Loader{
		source:   source,
		memo:     store.NewMemoryStore(),
		cache:    cache,
		fallback: fallback,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// Load returns the aggregated dataset, computing it on first use.
// It never fails: unreachable seasons simply contribute no rows.
func (l *Loader) Load(ctx context.Context) []polls.RawPollRow {
	if rows, ok := l.cachedDataset(ctx, true); ok {
		return rows
	}

	v, _, _ := l.group.Do(datasetFlight, func() (any, error) {
		if rows, ok := l.cachedDataset(ctx, false); ok {
			return rows, nil
		}
		return l.load(ctx), nil
	})
	return polls.Clone(v.([]polls.RawPollRow))
}

// Report returns the outcome of the most recent uncached load.
func (l *Loader) Report() (LoadReport, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.hasReport {
		return LoadReport{}, false
	}
	return l.report.clone(), true
}

func (l *Loader) load(ctx context.Context) []polls.RawPollRow {
	start := l.now()
	discovery := l.Discover(ctx)

	results := make([]SeasonResult, 0, len(discovery.Seasons))
	rows := make([]polls.RawPollRow, 0)
	for _, season := range discovery.Seasons {
		res := l.FetchSeason(ctx, season)
		results = append(results, res)
		rows = append(rows, res.Rows...)
	}

	shared := !discovery.Fallback && !l.fellBack.Load()
	for _, res := range results {
		if res.Degraded() {
			shared = false
			break
		}
	}
	l.storeDataset(ctx, rows, shared)

	elapsed := l.now().Sub(start)
	l.metrics.RecordLoad(elapsed, len(rows), len(discovery.Seasons))
	l.setReport(LoadReport{
		Discovery: discovery,
		Seasons:   results,
		Rows:      len(rows),
		Duration:  elapsed,
		LoadedAt:  l.now().UTC(),
	})

	logging.Info(l.logger, "loaded poll data",
		slog.Int(logging.FieldSeasons, len(discovery.Seasons)),
		slog.Any("season_list", discovery.Seasons),
		slog.Int(logging.FieldCount, len(rows)),
		slog.Any("sample", rows[:min(sampleSize, len(rows))]),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
	return rows
}

func (l *Loader) cachedDataset(ctx context.Context, record bool) ([]polls.RawPollRow, bool) {
	rows, ok, _ := l.memo.Dataset(ctx)
	if !ok && l.cache != nil {
		var err error
		rows, ok, err = l.cache.Dataset(ctx)
		if err != nil {
			logging.Warn(l.logger, "dataset cache read failed", "error", err)
			ok = false
		}
		if ok {
			_ = l.memo.SetDataset(ctx, rows)
		}
	}
	if record {
		l.metrics.RecordCacheLookup(datasetFlight, ok)
	}
	if !ok {
		return nil, false
	}
	if rows == nil {
		rows = []polls.RawPollRow{}
	}
	return rows, true
}

// storeDataset memoizes rows for the process and, when shared, in the cache.
func (l *Loader) storeDataset(ctx context.Context, rows []polls.RawPollRow, shared bool) {
	_ = l.memo.SetDataset(ctx, rows)
	if l.cache == nil {
		return
	}
	if !shared {
		logging.Warn(l.logger, "degraded dataset kept in process memory only")
		return
	}
	if err := l.cache.SetDataset(ctx, rows); err != nil {
		logging.Warn(l.logger, "failed to cache dataset", "error", err)
	}
}

func (l *Loader) setReport(r LoadReport) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.report = r
	l.hasReport = true
}
