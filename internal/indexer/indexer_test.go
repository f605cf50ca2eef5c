package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoframe/internal/library"
	"photoframe/internal/scanner"
	"photoframe/internal/textcache"
)

func writePhoto(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o644))
}

// setupTree creates root/{2024/a.jpg,2025/b.jpg,Favorites/fav.jpg,Omitted/skip.jpg}.
func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writePhoto(t, filepath.Join(root, "2024", "a.jpg"))
	writePhoto(t, filepath.Join(root, "2025", "b.jpg"))
	writePhoto(t, filepath.Join(root, "Favorites", "fav.jpg"))
	writePhoto(t, filepath.Join(root, "Omitted", "skip.jpg"))
	return root
}

func testConfig(root string) Config {
	return Config{
		Root:         root,
		FavoritesDir: "Favorites",
		Excluded:     []string{"Omitted"},
		BatchSize:    2,
	}
}

func paths(store *library.Store) []string {
	var out []string
	for _, p := range store.Photos() {
		out = append(out, p.Path)
	}
	return out
}

func TestIndexFull(t *testing.T) {
	root := setupTree(t)
	dataDir := t.TempDir()
	store := library.NewStore(library.NewPersister(dataDir))
	idx := New(testConfig(root), store, nil)

	res, err := idx.Index(context.Background(), scanner.ModeFull, false)
	require.NoError(t, err)

	assert.Equal(t, "full", res.Mode)
	assert.Equal(t, 3, res.Scanned)
	assert.Equal(t, 3, res.Added)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "2024", "a.jpg"),
		filepath.Join(root, "2025", "b.jpg"),
		filepath.Join(root, "Favorites", "fav.jpg"),
	}, paths(store))

	assert.False(t, store.Dirty(), "library should be snapshotted after the run")
	assert.FileExists(t, filepath.Join(dataDir, library.LibraryFile))

	progress := idx.GetProgress()
	assert.False(t, progress.IsIndexing)
	assert.Equal(t, int64(3), progress.PhotosScanned)
	assert.Equal(t, int64(2), progress.Batches)
	assert.False(t, idx.LastIndexTime().IsZero())
	assert.NoError(t, idx.LastError())
}

func TestIndexIsIdempotent(t *testing.T) {
	root := setupTree(t)
	store := library.NewStore(nil)
	idx := New(testConfig(root), store, nil)

	_, err := idx.Index(context.Background(), scanner.ModeFull, false)
	require.NoError(t, err)

	res, err := idx.Index(context.Background(), scanner.ModeFull, false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Scanned)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 3, store.Len())
}

func TestIndexDefaultsScansFavoritesOnly(t *testing.T) {
	root := setupTree(t)
	store := library.NewStore(nil)
	idx := New(testConfig(root), store, nil)

	res, err := idx.Index(context.Background(), scanner.ModeDefaults, false)
	require.NoError(t, err)
	assert.Equal(t, "defaults", res.Mode)
	assert.Equal(t, []string{filepath.Join(root, "Favorites", "fav.jpg")}, paths(store))
}

func TestIndexFullKeepsExistingEntries(t *testing.T) {
	root := setupTree(t)
	store := library.NewStore(nil)
	phantom := library.Photo{Path: filepath.Join(root, "gone.jpg"), CreatedAt: time.Now()}
	store.Merge([]library.Photo{phantom})
	idx := New(testConfig(root), store, nil)

	_, err := idx.Index(context.Background(), scanner.ModeFull, false)
	require.NoError(t, err)
	assert.True(t, store.Contains(phantom.Path))
	assert.Equal(t, 4, store.Len())
}

func TestIndexRebuildClearsAndPrunes(t *testing.T) {
	root := setupTree(t)
	store := library.NewStore(nil)
	gone := filepath.Join(root, "gone.jpg")
	kept := filepath.Join(root, "2024", "a.jpg")
	store.Merge([]library.Photo{{Path: gone, CreatedAt: time.Now()}})

	cache := textcache.New(t.TempDir())
	cache.Put(gone, textcache.Entry{Content: "old", Kind: textcache.KindQuote})
	cache.Put(kept, textcache.Entry{Content: "keep", Kind: textcache.KindPoem})

	idx := New(testConfig(root), store, cache)
	res, err := idx.Index(context.Background(), scanner.ModeFull, true)
	require.NoError(t, err)

	assert.Equal(t, "rebuild", res.Mode)
	assert.Equal(t, 1, res.Pruned)
	assert.False(t, store.Contains(gone))
	assert.Equal(t, 3, store.Len())

	_, ok := cache.Get(gone)
	assert.False(t, ok)
	entry, ok := cache.Get(kept)
	require.True(t, ok)
	assert.Equal(t, "keep", entry.Content)
}

func TestIndexRebuildRequiresFullMode(t *testing.T) {
	idx := New(testConfig(t.TempDir()), library.NewStore(nil), nil)
	_, err := idx.Index(context.Background(), scanner.ModeDefaults, true)
	assert.Error(t, err)
	assert.False(t, idx.IsIndexing())
}

func TestIndexRejectsUnknownMode(t *testing.T) {
	idx := New(testConfig(t.TempDir()), library.NewStore(nil), nil)
	_, err := idx.Index(context.Background(), scanner.Mode("partial"), false)
	assert.Error(t, err)
}

func batch(paths ...string) scanner.Message {
	msg := scanner.Message{Type: scanner.MessageBatch}
	for _, p := range paths {
		msg.Photos = append(msg.Photos, library.Photo{Path: p, CreatedAt: time.Unix(0, 0)})
	}
	return msg
}

func TestIndexWorkerExitWithoutDone(t *testing.T) {
	store := library.NewStore(nil)
	idx := New(testConfig(t.TempDir()), store, nil)
	idx.worker = func(_ context.Context, _ scanner.WorkerConfig, _ scanner.Mode, out chan<- scanner.Message) error {
		defer close(out)
		out <- batch("/p/1.jpg", "/p/2.jpg")
		return nil
	}

	_, err := idx.Index(context.Background(), scanner.ModeFull, false)
	assert.ErrorIs(t, err, ErrIncompleteScan)
	assert.Equal(t, 2, store.Len(), "partial batches stay merged")
	assert.ErrorIs(t, idx.LastError(), ErrIncompleteScan)
	assert.False(t, idx.IsIndexing())
}

func TestIndexWorkerReportsError(t *testing.T) {
	store := library.NewStore(nil)
	idx := New(testConfig(t.TempDir()), store, nil)
	idx.worker = func(_ context.Context, _ scanner.WorkerConfig, _ scanner.Mode, out chan<- scanner.Message) error {
		defer close(out)
		out <- batch("/p/1.jpg")
		out <- scanner.Message{Type: scanner.MessageError, Error: "disk on fire"}
		return errors.New("disk on fire")
	}

	_, err := idx.Index(context.Background(), scanner.ModeFull, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, 1, store.Len())
}

func TestIndexRebuildFailureKeepsCache(t *testing.T) {
	store := library.NewStore(nil)
	cache := textcache.New("")
	cache.Put("/p/old.jpg", textcache.Entry{Content: "x", Kind: textcache.KindQuote})

	idx := New(testConfig(t.TempDir()), store, cache)
	idx.worker = func(_ context.Context, _ scanner.WorkerConfig, _ scanner.Mode, out chan<- scanner.Message) error {
		close(out)
		return nil
	}

	_, err := idx.Index(context.Background(), scanner.ModeFull, true)
	require.Error(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestIndexInProgress(t *testing.T) {
	store := library.NewStore(nil)
	idx := New(testConfig(t.TempDir()), store, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	idx.worker = func(_ context.Context, _ scanner.WorkerConfig, _ scanner.Mode, out chan<- scanner.Message) error {
		defer close(out)
		close(started)
		<-release
		out <- scanner.Message{Type: scanner.MessageDone}
		return nil
	}

	require.NoError(t, idx.Start(context.Background(), scanner.ModeFull, false))
	<-started

	assert.True(t, idx.IsIndexing())
	assert.True(t, idx.GetProgress().IsIndexing)

	_, err := idx.Index(context.Background(), scanner.ModeFull, false)
	assert.ErrorIs(t, err, ErrIndexInProgress)
	assert.ErrorIs(t, idx.Start(context.Background(), scanner.ModeFull, false), ErrIndexInProgress)

	close(release)
	require.Eventually(t, func() bool { return !idx.IsIndexing() }, 5*time.Second, 10*time.Millisecond)
	assert.NoError(t, idx.LastError())
}

func TestIndexCancelled(t *testing.T) {
	root := setupTree(t)
	store := library.NewStore(nil)
	idx := New(testConfig(root), store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.Index(ctx, scanner.ModeFull, false)
	assert.Error(t, err)
	assert.False(t, idx.IsIndexing())
}

func TestNextRun(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{
			"later today",
			time.Date(2026, 3, 1, 1, 30, 0, 0, loc), 3,
			time.Date(2026, 3, 1, 3, 0, 0, 0, loc),
		},
		{
			"already passed",
			time.Date(2026, 3, 1, 4, 0, 0, 0, loc), 3,
			time.Date(2026, 3, 2, 3, 0, 0, 0, loc),
		},
		{
			"exactly now rolls over",
			time.Date(2026, 3, 1, 3, 0, 0, 0, loc), 3,
			time.Date(2026, 3, 2, 3, 0, 0, 0, loc),
		},
		{
			"month end",
			time.Date(2026, 1, 31, 23, 0, 0, 0, loc), 2,
			time.Date(2026, 2, 1, 2, 0, 0, 0, loc),
		},
		{
			"invalid hour uses midnight",
			time.Date(2026, 3, 1, 12, 0, 0, 0, loc), 42,
			time.Date(2026, 3, 2, 0, 0, 0, 0, loc),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextRun(tt.now, tt.hour))
		})
	}
}

func TestRunNightlyStopsOnCancel(t *testing.T) {
	idx := New(testConfig(t.TempDir()), library.NewStore(nil), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		idx.RunNightly(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RunNightly did not stop after cancel")
	}
}
