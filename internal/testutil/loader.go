package testutil

import (
	"context"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/loader"
	"github.com/preston-bernstein/poll-position/internal/store"
)

// NewLoaderWithRows builds a loader whose cache already holds rows and their seasons,
// so no source is ever called. A nil rows slice leaves the cache empty.
func NewLoaderWithRows(rows []polls.RawPollRow) *loader.Loader {
	ms := store.NewMemoryStore()
	if rows != nil {
		ctx := context.Background()
		_ = ms.SetSeasons(ctx, polls.SeasonsOf(rows))
		_ = ms.SetDataset(ctx, rows)
	}
	return loader.New(nil, ms, loader.Config{})
}
