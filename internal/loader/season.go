package loader

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/providers"
)

// SeasonResult is either success(rows) or degraded(reason) for one season.
type SeasonResult struct {
	Season   polls.Season       `json:"season"`
	Shape    providers.Shape    `json:"shape"`
	Outcome  string             `json:"outcome"`
	Upstream int                `json:"upstreamRows"`
	Kept     int                `json:"keptRows"`
	Reason   string             `json:"reason,omitempty"`
	Rows     []polls.RawPollRow `json:"-"`
	Err      error              `json:"-"`
}

// Degraded reports whether the season contributed nothing because of a failure.
func (r SeasonResult) Degraded() bool {
	return r.Err != nil
}

// FetchSeason fetches one season and keeps its AP Top 25 regular-season rows,
// each stamped with season. Failures are logged and returned as a degraded result.
func (l *Loader) FetchSeason(ctx context.Context, season polls.Season) SeasonResult {
	poll, err := l.fetchLatestPoll(ctx, season)
	if err != nil {
		l.metrics.RecordSeasonFetch(providers.Outcome(err))
		logging.Warn(l.logger, "failed to fetch season poll",
			slog.Int(logging.FieldSeason, int(season)),
			"outcome", providers.Outcome(err),
			"error", err,
		)
		return SeasonResult{
			Season:  season,
			Shape:   providers.ShapeUnknown,
			Outcome: providers.Outcome(err),
			Reason:  err.Error(),
			Rows:    []polls.RawPollRow{},
			Err:     err,
		}
	}

	rows := polls.Normalize(poll.Rows, season)
	l.metrics.RecordSeasonFetch(providers.OutcomeOK)
	logging.Debug(l.logger, "fetched season poll",
		slog.Int(logging.FieldSeason, int(season)),
		slog.String(logging.FieldShape, string(poll.Shape)),
		slog.Int(logging.FieldCount, len(rows)),
	)
	return SeasonResult{
		Season:   season,
		Shape:    poll.Shape,
		Outcome:  providers.OutcomeOK,
		Upstream: len(poll.Rows),
		Kept:     len(rows),
		Rows:     rows,
	}
}

func (l *Loader) fetchLatestPoll(ctx context.Context, season polls.Season) (providers.LatestPoll, error) {
	if l.source == nil {
		return providers.LatestPoll{Shape: providers.ShapeUnknown}, providers.ErrSourceUnavailable
	}
	return l.source.FetchLatestPoll(ctx, season)
}
