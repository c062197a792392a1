package store

import (
	"context"
	"sync"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

// MemoryStore keeps the discovered seasons and the aggregated dataset in memory.
// Both cells are write-once in practice; reads always return copies.
type MemoryStore struct {
	mu         sync.RWMutex
	seasons    []polls.Season
	hasSeasons bool
	rows       []polls.RawPollRow
	hasRows    bool
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seasons returns the cached season list. An empty list is a valid cached value.
func (s *MemoryStore) Seasons(ctx context.Context) ([]polls.Season, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasSeasons {
		return nil, false, nil
	}
	out := make([]polls.Season, len(s.seasons))
	copy(out, s.seasons)
	return out, true, nil
}

// SetSeasons replaces the cached season list.
func (s *MemoryStore) SetSeasons(ctx context.Context, seasons []polls.Season) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seasons = make([]polls.Season, len(seasons))
	copy(s.seasons, seasons)
	s.hasSeasons = true
	return nil
}

// Dataset returns a copy of the cached rows.
func (s *MemoryStore) Dataset(ctx context.Context) ([]polls.RawPollRow, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasRows {
		return nil, false, nil
	}
	return polls.Clone(s.rows), true, nil
}

// SetDataset replaces the cached rows with a copy of the given snapshot.
func (s *MemoryStore) SetDataset(ctx context.Context, rows []polls.RawPollRow) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = polls.Clone(rows)
	s.hasRows = true
	return nil
}
