package library

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"photoframe/internal/logging"
	"photoframe/internal/metrics"
	"photoframe/internal/persist"
)

// LibraryFile is the snapshot file name inside the data directory.
const LibraryFile = "library.json"

// Persister stores the library snapshot as a JSON array of {path, created}.
type Persister struct {
	path string
}

// NewPersister returns a persister writing LibraryFile under dataDir.
func NewPersister(dataDir string) *Persister {
	return &Persister{path: filepath.Join(dataDir, LibraryFile)}
}

// Path returns the snapshot file location.
func (p *Persister) Path() string {
	return p.path
}

// SaveLibrary implements Snapshotter.
func (p *Persister) SaveLibrary(photos []Photo) error {
	start := time.Now()
	if photos == nil {
		photos = []Photo{}
	}

	err := persist.WriteJSON(p.path, photos)
	metrics.SnapshotWriteDuration.WithLabelValues("library").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SnapshotWritesTotal.WithLabelValues("library", "error").Inc()
		return err
	}
	metrics.SnapshotWritesTotal.WithLabelValues("library", "success").Inc()
	return nil
}

// LoadLibrary reads the last snapshot. A missing file yields an empty slice.
func (p *Persister) LoadLibrary() ([]Photo, error) {
	var photos []Photo
	found, err := persist.ReadJSON(p.path, &photos)
	if err != nil {
		return nil, fmt.Errorf("load library snapshot: %w", err)
	}
	if !found {
		logging.Info("No library snapshot at %s, starting empty", p.path)
		return []Photo{}, nil
	}
	logging.Info("Loaded %s photos from %s", humanize.Comma(int64(len(photos))), p.path)
	return photos, nil
}

// RunSnapshots calls SnapshotIfDirty every interval until ctx is done, then
// flushes one last time.
func RunSnapshots(ctx context.Context, store *Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if wrote, err := store.SnapshotIfDirty(); err != nil {
				logging.Error("Periodic snapshot failed: %v", err)
			} else if wrote {
				logging.Debug("Periodic snapshot written")
			}
		case <-ctx.Done():
			if _, err := store.SnapshotIfDirty(); err != nil {
				logging.Error("Final snapshot failed: %v", err)
			}
			return
		}
	}
}
