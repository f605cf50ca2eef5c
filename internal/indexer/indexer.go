package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"photoframe/internal/library"
	"photoframe/internal/logging"
	"photoframe/internal/metrics"
	"photoframe/internal/scanner"
)

// Size of the ingestion channel between the scan worker and the consumer.
const channelBuffer = 4

var (
	// ErrIndexInProgress is returned when a run is already active.
	ErrIndexInProgress = errors.New("index already in progress")
	// ErrIncompleteScan is returned when the worker stopped without
	// reporting success or failure.
	ErrIncompleteScan = errors.New("scan worker exited without completing")
)

// Config describes the tree to index.
type Config struct {
	Root string
	// FavoritesDir is the favorites bucket, relative to Root.
	FavoritesDir string
	// Excluded directory names are skipped during full scans.
	Excluded  []string
	BatchSize int
	// NightlyHour is the local hour (0-23) of the daily full scan.
	NightlyHour int
}

// Pruner drops cached data for photos that are no longer indexed.
type Pruner interface {
	Retain(keep func(path string) bool) int
	Save() error
}

// Worker produces a scan stream on out and closes it.
type Worker func(ctx context.Context, cfg scanner.WorkerConfig, mode scanner.Mode, out chan<- scanner.Message) error

// Indexer runs scans into a library store.
type Indexer struct {
	cfg    Config
	store  *library.Store
	cache  Pruner
	worker Worker

	indexMu       sync.Mutex
	isIndexing    bool
	lastIndexTime time.Time
	lastError     error

	// Progress tracking
	photosScanned atomic.Int64
	batches       atomic.Int64
	indexProgress atomic.Value
}

// IndexProgress tracks the current indexing progress.
type IndexProgress struct {
	PhotosScanned int64     `json:"photosScanned"`
	Batches       int64     `json:"batches"`
	IsIndexing    bool      `json:"isIndexing"`
	Mode          string    `json:"mode,omitempty"`
	StartedAt     time.Time `json:"startedAt,omitempty"`
}

// Result summarizes one completed run.
type Result struct {
	Mode     string
	Scanned  int
	Added    int
	Pruned   int
	Duration time.Duration
}

// New creates an Indexer. cache may be nil.
func New(cfg Config, store *library.Store, cache Pruner) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = scanner.DefaultBatchSize
	}
	idx := &Indexer{
		cfg:    cfg,
		store:  store,
		cache:  cache,
		worker: scanner.RunWorker,
	}
	idx.indexProgress.Store(IndexProgress{})
	return idx
}

// Index runs a scan to completion. rebuild requires ModeFull.
func (idx *Indexer) Index(ctx context.Context, mode scanner.Mode, rebuild bool) (Result, error) {
	if err := validate(mode, rebuild); err != nil {
		return Result{}, err
	}
	if !idx.tryStartIndexing() {
		return Result{}, ErrIndexInProgress
	}
	defer idx.finishIndexing()
	return idx.run(ctx, mode, rebuild)
}

// Start runs a scan in the background. The in-progress check happens
// before Start returns.
func (idx *Indexer) Start(ctx context.Context, mode scanner.Mode, rebuild bool) error {
	if err := validate(mode, rebuild); err != nil {
		return err
	}
	if !idx.tryStartIndexing() {
		return ErrIndexInProgress
	}
	go func() {
		defer idx.finishIndexing()
		if _, err := idx.run(ctx, mode, rebuild); err != nil {
			logging.Error("Background index failed: %v", err)
		}
	}()
	return nil
}

func validate(mode scanner.Mode, rebuild bool) error {
	if _, err := scanner.ParseMode(string(mode)); err != nil {
		return err
	}
	if rebuild && mode != scanner.ModeFull {
		return fmt.Errorf("rebuild requires %q mode, got %q", scanner.ModeFull, mode)
	}
	return nil
}

func label(mode scanner.Mode, rebuild bool) string {
	if rebuild {
		return "rebuild"
	}
	return string(mode)
}

func (idx *Indexer) run(ctx context.Context, mode scanner.Mode, rebuild bool) (Result, error) {
	name := label(mode, rebuild)

	metrics.IndexerIsRunning.Set(1)
	defer metrics.IndexerIsRunning.Set(0)

	startTime := time.Now()
	idx.resetCounters(startTime, name)
	logging.Info("Starting %s index of %s", name, idx.cfg.Root)

	if rebuild {
		idx.store.Clear()
	}

	msgs := make(chan scanner.Message, channelBuffer)
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- idx.worker(ctx, idx.workerConfig(), mode, msgs)
	}()

	res, err := idx.consume(msgs)
	if werr := <-workerDone; err == nil && werr != nil {
		err = werr
	}
	res.Mode = name

	if err == nil && rebuild && idx.cache != nil {
		res.Pruned = idx.cache.Retain(idx.store.Contains)
		if res.Pruned > 0 {
			logging.Info("Dropped cached text for %d photos no longer present", res.Pruned)
			if serr := idx.cache.Save(); serr != nil {
				logging.Error("Failed to save text cache after rebuild: %v", serr)
			}
		}
	}

	// Batches merged before a failure stay, so snapshot either way.
	if _, serr := idx.store.SnapshotIfDirty(); serr != nil {
		logging.Error("Failed to snapshot library after index: %v", serr)
	}

	res.Duration = time.Since(startTime)
	idx.finalizeIndex(res, err)

	if err != nil {
		metrics.IndexerRunsTotal.WithLabelValues(name, "error").Inc()
		return res, err
	}
	metrics.IndexerRunsTotal.WithLabelValues(name, "success").Inc()
	return res, nil
}

func (idx *Indexer) workerConfig() scanner.WorkerConfig {
	return scanner.WorkerConfig{
		Root:         idx.cfg.Root,
		FavoritesDir: idx.cfg.FavoritesDir,
		Excluded:     idx.cfg.Excluded,
		BatchSize:    idx.cfg.BatchSize,
	}
}

// consume merges batches in arrival order until the worker closes msgs.
func (idx *Indexer) consume(msgs <-chan scanner.Message) (Result, error) {
	var res Result
	var done bool
	var failure error

	for msg := range msgs {
		switch msg.Type {
		case scanner.MessageBatch:
			added := idx.store.Merge(msg.Photos)
			res.Scanned += len(msg.Photos)
			res.Added += added

			idx.photosScanned.Add(int64(len(msg.Photos)))
			idx.batches.Add(1)
			idx.updateProgress()

			metrics.IndexerBatchesTotal.Inc()
			metrics.IndexerPhotosScanned.Add(float64(len(msg.Photos)))
			metrics.IndexerPhotosMerged.Add(float64(added))
		case scanner.MessageDone:
			done = true
		case scanner.MessageError:
			failure = errors.New(msg.Error)
		default:
			logging.Warn("Ignoring unknown scan message type %q", msg.Type)
		}
	}

	switch {
	case failure != nil:
		return res, fmt.Errorf("scan failed: %w", failure)
	case !done:
		return res, ErrIncompleteScan
	}
	return res, nil
}

// tryStartIndexing attempts to start indexing, returns false if already in progress.
func (idx *Indexer) tryStartIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	if idx.isIndexing {
		return false
	}
	idx.isIndexing = true
	return true
}

// finishIndexing marks indexing as complete.
func (idx *Indexer) finishIndexing() {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	idx.isIndexing = false
}

func (idx *Indexer) resetCounters(startTime time.Time, mode string) {
	idx.photosScanned.Store(0)
	idx.batches.Store(0)
	idx.indexProgress.Store(IndexProgress{
		IsIndexing: true,
		Mode:       mode,
		StartedAt:  startTime,
	})
}

func (idx *Indexer) updateProgress() {
	p := idx.getProgress()
	p.PhotosScanned = idx.photosScanned.Load()
	p.Batches = idx.batches.Load()
	idx.indexProgress.Store(p)
}

func (idx *Indexer) finalizeIndex(res Result, err error) {
	idx.indexMu.Lock()
	idx.lastIndexTime = time.Now()
	idx.lastError = err
	idx.indexMu.Unlock()

	idx.indexProgress.Store(IndexProgress{
		PhotosScanned: idx.photosScanned.Load(),
		Batches:       idx.batches.Load(),
		Mode:          res.Mode,
	})
	metrics.IndexerLastRunDuration.Set(res.Duration.Seconds())

	if err != nil {
		logging.Error("Index (%s) failed after %v: %v (%s photos merged before failure)",
			res.Mode, res.Duration, err, humanize.Comma(int64(res.Added)))
		return
	}
	logging.Info("Index (%s) complete: %s photos scanned, %s new, library now %s, took %v",
		res.Mode, humanize.Comma(int64(res.Scanned)), humanize.Comma(int64(res.Added)),
		humanize.Comma(int64(idx.store.Len())), res.Duration)
}

func (idx *Indexer) getProgress() IndexProgress {
	if progress, ok := idx.indexProgress.Load().(IndexProgress); ok {
		return progress
	}
	return IndexProgress{}
}

// GetProgress returns the current indexing progress.
func (idx *Indexer) GetProgress() IndexProgress {
	return idx.getProgress()
}

// IsIndexing returns whether an index operation is currently in progress.
func (idx *Indexer) IsIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.isIndexing
}

// LastIndexTime returns the time the last run finished.
func (idx *Indexer) LastIndexTime() time.Time {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.lastIndexTime
}

// LastError returns the error of the last run, or nil.
func (idx *Indexer) LastError() error {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.lastError
}
