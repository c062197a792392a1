package testutil

import (
	"testing"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/snapshots"
)

// NewTempWriter returns a snapshot writer rooted in a temp dir.
func NewTempWriter(t *testing.T) *snapshots.Writer {
	t.Helper()
	return snapshots.NewWriter(t.TempDir())
}

// WriteDataset writes rows as the latest dataset snapshot, failing the test on error.
func WriteDataset(t *testing.T, w *snapshots.Writer, rows []polls.RawPollRow) {
	t.Helper()
	if err := w.WriteDataset(rows); err != nil {
		t.Fatalf("failed to write dataset snapshot: %v", err)
	}
}
