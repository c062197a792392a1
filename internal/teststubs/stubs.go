package teststubs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/providers"
)

// StubSource is a test double for providers.Source.
type StubSource struct {
	Seasons    []polls.Season
	SeasonsErr error
	Polls      map[polls.Season]providers.LatestPoll
	PollErrs   map[polls.Season]error

	// Gate, when set, blocks every call until it is closed.
	Gate chan struct{}

	SeasonCalls atomic.Int32
	PollCalls   atomic.Int32

	mu        sync.Mutex
	requested []polls.Season
}

// FetchSeasons returns the configured seasons and error while tracking calls.
func (s *StubSource) FetchSeasons(ctx context.Context) ([]polls.Season, error) {
	s.SeasonCalls.Add(1)
	if err := s.wait(ctx); err != nil {
		return nil, &providers.TransportError{Endpoint: providers.EndpointSeasons, Err: err}
	}
	if s.SeasonsErr != nil {
		return nil, s.SeasonsErr
	}
	out := make([]polls.Season, len(s.Seasons))
	copy(out, s.Seasons)
	return out, nil
}

// FetchLatestPoll returns the configured poll for a season while recording the request order.
func (s *StubSource) FetchLatestPoll(ctx context.Context, season polls.Season) (providers.LatestPoll, error) {
	s.PollCalls.Add(1)
	s.mu.Lock()
	s.requested = append(s.requested, season)
	s.mu.Unlock()

	if err := s.wait(ctx); err != nil {
		return providers.LatestPoll{Shape: providers.ShapeUnknown}, &providers.TransportError{Endpoint: providers.EndpointLatestPoll, Err: err}
	}
	if err, ok := s.PollErrs[season]; ok && err != nil {
		return providers.LatestPoll{Shape: providers.ShapeUnknown}, err
	}
	poll, ok := s.Polls[season]
	if !ok {
		return providers.LatestPoll{Shape: providers.ShapeUnknown}, &providers.HTTPStatusError{Endpoint: providers.EndpointLatestPoll, StatusCode: 404}
	}
	return providers.LatestPoll{Shape: poll.Shape, Rows: polls.Clone(poll.Rows)}, nil
}

// Requested returns the seasons requested so far, in order.
func (s *StubSource) Requested() []polls.Season {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]polls.Season, len(s.requested))
	copy(out, s.requested)
	return out
}

func (s *StubSource) wait(ctx context.Context) error {
	if s.Gate == nil {
		return nil
	}
	select {
	case <-s.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ErrCacheDown is returned by a failing StubCache.
var ErrCacheDown = errors.New("cache down")

// StubCache is an in-memory cache double whose reads and writes can be made to fail.
type StubCache struct {
	ReadErr  error
	WriteErr error

	mu         sync.Mutex
	seasons    []polls.Season
	hasSeasons bool
	rows       []polls.RawPollRow
	hasRows    bool
}

// Seasons returns the cached seasons or ReadErr.
func (c *StubCache) Seasons(ctx context.Context) ([]polls.Season, bool, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return nil, false, c.ReadErr
	}
	return append([]polls.Season{}, c.seasons...), c.hasSeasons, nil
}

// SetSeasons stores seasons unless WriteErr is set.
func (c *StubCache) SetSeasons(ctx context.Context, seasons []polls.Season) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.seasons = append([]polls.Season{}, seasons...)
	c.hasSeasons = true
	return nil
}

// Dataset returns the cached rows or ReadErr.
func (c *StubCache) Dataset(ctx context.Context) ([]polls.RawPollRow, bool, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return nil, false, c.ReadErr
	}
	if !c.hasRows {
		return nil, false, nil
	}
	return polls.Clone(c.rows), true, nil
}

// SetDataset stores rows unless WriteErr is set.
func (c *StubCache) SetDataset(ctx context.Context, rows []polls.RawPollRow) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.rows = polls.Clone(rows)
	c.hasRows = true
	return nil
}

// StubSnapshotWriter is a test double for warmer.SnapshotWriter.
type StubSnapshotWriter struct {
	Err error

	mu      sync.Mutex
	written [][]polls.RawPollRow
}

// WriteDataset records the rows for verification in tests.
func (w *StubSnapshotWriter) WriteDataset(rows []polls.RawPollRow) error {
	if w.Err != nil {
		return w.Err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, polls.Clone(rows))
	return nil
}

// Written returns every dataset recorded so far.
func (w *StubSnapshotWriter) Written() [][]polls.RawPollRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]polls.RawPollRow, len(w.written))
	copy(out, w.written)
	return out
}
