package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/metrics"
)

// instrumentedSource wraps a Source with call metrics and debug logging.
// It never retries: each call reaches the inner source exactly once.
type instrumentedSource struct {
	inner   Source
	logger  *slog.Logger
	metrics *metrics.Recorder
	name    string
	now     func() time.Time
}

// NewInstrumentedSource wraps inner so every upstream call is timed and counted.
// The result also implements SeasonFilesSource; it reports
// ErrSeasonFilesUnsupported when inner cannot list files.
func NewInstrumentedSource(inner Source, logger *slog.Logger, recorder *metrics.Recorder, name string) Source {
	if name == "" {
		name = "source"
	}
	return &instrumentedSource{
		inner:   inner,
		logger:  logger,
		metrics: recorder,
		name:    name,
		now:     time.Now,
	}
}

func (s *instrumentedSource) FetchSeasons(ctx context.Context) ([]polls.Season, error) {
	if s.inner == nil {
		return nil, ErrSourceUnavailable
	}
	start := s.now()
	seasons, err := s.inner.FetchSeasons(ctx)
	s.observe(ctx, EndpointSeasons, start, err, slog.Int(logging.FieldCount, len(seasons)))
	return seasons, err
}

func (s *instrumentedSource) FetchLatestPoll(ctx context.Context, season polls.Season) (LatestPoll, error) {
	if s.inner == nil {
		return LatestPoll{Shape: ShapeUnknown}, ErrSourceUnavailable
	}
	start := s.now()
	poll, err := s.inner.FetchLatestPoll(ctx, season)
	s.observe(ctx, EndpointLatestPoll, start, err,
		slog.Int(logging.FieldSeason, int(season)),
		slog.String(logging.FieldShape, string(poll.Shape)),
		slog.Int(logging.FieldCount, len(poll.Rows)),
	)
	return poll, err
}

// FetchSeasonFiles forwards to the inner source when it can list stored files.
func (s *instrumentedSource) FetchSeasonFiles(ctx context.Context, season polls.Season) (polls.SeasonFilesResponse, error) {
	files, ok := s.inner.(SeasonFilesSource)
	if !ok {
		return polls.SeasonFilesResponse{}, ErrSeasonFilesUnsupported
	}
	start := s.now()
	resp, err := files.FetchSeasonFiles(ctx, season)
	s.observe(ctx, EndpointSeasonPoll, start, err,
		slog.Int(logging.FieldSeason, int(season)),
		slog.Int(logging.FieldCount, len(resp.Files)),
	)
	return resp, err
}

func (s *instrumentedSource) observe(ctx context.Context, endpoint string, start time.Time, err error, args ...any) {
	elapsed := s.now().Sub(start)
	s.metrics.RecordSourceAttempt(endpoint, elapsed, err)

	args = append(args, slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()))
	if err != nil {
		args = append(args, "error", err)
	}
	logWithSource(ctx, s.logger, slog.LevelDebug, s.name, endpoint, "source call complete", args...)
}
