package loader

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/providers"
)

// DiscoveryResult describes how the season list was obtained.
type DiscoveryResult struct {
	Seasons   []polls.Season `json:"seasons"`
	FromCache bool           `json:"fromCache"`
	Fallback  bool           `json:"fallback"`
	Reason    string         `json:"reason,omitempty"`
	Err       error          `json:"-"`
}

// DiscoverSeasons returns the seasons to load, in the order the API lists them.
// Any failure yields the fallback season. Either outcome is memoized for the
// process; only a successful discovery reaches the shared cache.
func (l *Loader) DiscoverSeasons(ctx context.Context) []polls.Season {
	return l.Discover(ctx).Seasons
}

// Discover is DiscoverSeasons with the outcome details kept.
func (l *Loader) Discover(ctx context.Context) DiscoveryResult {
	if seasons, ok := l.cachedSeasons(ctx, true); ok {
		return DiscoveryResult{Seasons: seasons, FromCache: true}
	}

	v, _, _ := l.group.Do(seasonsFlight, func() (any, error) {
		if seasons, ok := l.cachedSeasons(ctx, false); ok {
			return DiscoveryResult{Seasons: seasons, FromCache: true}, nil
		}
		return l.discover(ctx), nil
	})

	res := v.(DiscoveryResult)
	res.Seasons = copySeasons(res.Seasons)
	return res
}

func (l *Loader) discover(ctx context.Context) DiscoveryResult {
	res := DiscoveryResult{}
	seasons, err := l.fetchSeasons(ctx)
	if err != nil {
		logging.Error(l.logger, "failed to load seasons", err,
			slog.Int(logging.FieldSeason, int(l.fallback)),
		)
		res = DiscoveryResult{
			Seasons:  []polls.Season{l.fallback},
			Fallback: true,
			Reason:   err.Error(),
			Err:      err,
		}
	} else {
		if seasons == nil {
			seasons = []polls.Season{}
		}
		res.Seasons = seasons
	}

	_ = l.memo.SetSeasons(ctx, res.Seasons)
	if res.Fallback {
		l.fellBack.Store(true)
		return res
	}
	if l.cache != nil {
		if err := l.cache.SetSeasons(ctx, res.Seasons); err != nil {
			logging.Warn(l.logger, "failed to cache seasons", "error", err)
		}
	}
	return res
}

func (l *Loader) fetchSeasons(ctx context.Context) ([]polls.Season, error) {
	if l.source == nil {
		return nil, providers.ErrSourceUnavailable
	}
	return l.source.FetchSeasons(ctx)
}

func (l *Loader) cachedSeasons(ctx context.Context, record bool) ([]polls.Season, bool) {
	seasons, ok, _ := l.memo.Seasons(ctx)
	if !ok && l.cache != nil {
		var err error
		seasons, ok, err = l.cache.Seasons(ctx)
		if err != nil {
			logging.Warn(l.logger, "season cache read failed", "error", err)
			ok = false
		}
		if ok {
			_ = l.memo.SetSeasons(ctx, seasons)
		}
	}
	if record {
		l.metrics.RecordCacheLookup(seasonsFlight, ok)
	}
	if !ok {
		return nil, false
	}
	if seasons == nil {
		seasons = []polls.Season{}
	}
	return seasons, true
}

func copySeasons(in []polls.Season) []polls.Season {
	out := make([]polls.Season, len(in))
	copy(out, in)
	return out
}
