package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

// ErrNoSnapshot is returned when no dataset snapshot exists on disk.
var ErrNoSnapshot = errors.New("dataset snapshot not found")

// Store defines how snapshots are loaded.
type Store interface {
	LoadDataset() (Dataset, error)
}

// FSStore loads snapshots from the filesystem.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an FS-backed snapshot store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// LoadDataset reads {basePath}/polls/latest.json.
func (s *FSStore) LoadDataset() (Dataset, error) {
	if s == nil || s.basePath == "" {
		return Dataset{}, errors.New("snapshot store not configured")
	}
	f, err := os.Open(DatasetSnapshotPath(s.basePath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Dataset{}, ErrNoSnapshot
		}
		return Dataset{}, err
	}
	defer f.Close()

	var payload Dataset
	if err := json.NewDecoder(f).Decode(&payload); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset snapshot: %w", err)
	}
	if payload.Rows == nil {
		payload.Rows = []polls.RawPollRow{}
	}
	if payload.Seasons == nil {
		payload.Seasons = polls.SeasonsOf(payload.Rows)
	}
	payload.Count = len(payload.Rows)
	return payload, nil
}
