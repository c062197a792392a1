package snapshots

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

// Dataset is the on-disk form of the aggregated poll rows.
type Dataset struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Seasons     []polls.Season     `json:"seasons"`
	Count       int                `json:"count"`
	Rows        []polls.RawPollRow `json:"rows"`
}

// Writer persists the dataset snapshot and manifest.
type Writer struct {
	basePath string
	now      func() time.Time
}

// NewWriter constructs a writer rooted at basePath.
func NewWriter(basePath string) *Writer {
	return &Writer{
		basePath: basePath,
		now:      time.Now,
	}
}

// BasePath exposes the writer root path (primarily for testing).
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// WriteDataset writes {base}/polls/latest.json atomically and refreshes the manifest.
// Identical content is not rewritten.
func (w *Writer) WriteDataset(rows []polls.RawPollRow) error {
	if w == nil || w.basePath == "" {
		return errors.New("snapshot writer not configured")
	}
	if rows == nil {
		rows = []polls.RawPollRow{}
	}
	now := w.now().UTC()
	seasons := polls.SeasonsOf(rows)

	target := DatasetSnapshotPath(w.basePath)
	payload := Dataset{Seasons: seasons, Count: len(rows), Rows: rows}

	existing, readErr := os.ReadFile(target)
	if readErr == nil && sameRows(existing, payload) {
		return w.updateManifest(seasons, len(rows), now)
	}

	payload.GeneratedAt = now
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	if err := writeAtomic(target, data); err != nil {
		return err
	}
	return w.updateManifest(seasons, len(rows), now)
}

func (w *Writer) updateManifest(seasons []polls.Season, rows int, now time.Time) error {
	m, err := ReadManifest(w.basePath)
	if err != nil {
		m = defaultManifest(now)
	}
	m.Version = manifestVersion
	m.GeneratedAt = now
	m.Polls = DatasetMeta{Seasons: seasons, Rows: rows, LastRefreshed: now}
	return writeManifest(w.basePath, m)
}

// sameRows compares everything but the generation timestamp.
func sameRows(existing []byte, next Dataset) bool {
	var prev Dataset
	if err := json.Unmarshal(existing, &prev); err != nil {
		return false
	}
	prev.GeneratedAt = time.Time{}
	a, errA := json.Marshal(prev)
	b, errB := json.Marshal(next)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

func writeAtomic(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
