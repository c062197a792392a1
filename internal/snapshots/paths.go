package snapshots

import "path/filepath"

const (
	pollsDir     = "polls"
	latestFile   = "latest.json"
	manifestFile = "manifest.json"
)

// DatasetSnapshotPath builds the path to the latest dataset snapshot.
func DatasetSnapshotPath(basePath string) string {
	return filepath.Join(basePath, pollsDir, latestFile)
}

// ManifestPath builds the path to the snapshot manifest.
func ManifestPath(basePath string) string {
	return filepath.Join(basePath, manifestFile)
}
