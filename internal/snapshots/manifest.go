package snapshots

import (
	"encoding/json"
	"os"
	"time"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

const manifestVersion = 1

// Manifest tracks snapshot metadata.
type Manifest struct {
	Version     int         `json:"version"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Polls       DatasetMeta `json:"polls"`
}

// DatasetMeta describes the dataset snapshot currently on disk.
type DatasetMeta struct {
	Seasons       []polls.Season `json:"seasons"`
	Rows          int            `json:"rows"`
	LastRefreshed time.Time      `json:"lastRefreshed"`
}

func defaultManifest(now time.Time) Manifest {
	return Manifest{
		Version:     manifestVersion,
		GeneratedAt: now,
		Polls: DatasetMeta{
			Seasons: []polls.Season{},
		},
	}
}

// ReadManifest loads the manifest under basePath.
func ReadManifest(basePath string) (Manifest, error) {
	f, err := os.Open(ManifestPath(basePath))
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()
	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func writeManifest(basePath string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(ManifestPath(basePath), data)
}
