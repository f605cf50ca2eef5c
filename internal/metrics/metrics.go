package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photoframe_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_indexer_runs_total",
			Help: "Total number of scan runs by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photoframe_indexer_running",
			Help: "Whether a scan is currently running (1 = running, 0 = idle)",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photoframe_indexer_last_run_duration_seconds",
			Help: "Duration of the last scan run in seconds",
		},
	)

	IndexerPhotosScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_indexer_photos_scanned_total",
			Help: "Photos emitted by the scanner",
		},
	)

	IndexerPhotosMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_indexer_photos_merged_total",
			Help: "Photos newly added to the library by ingestion",
		},
	)

	IndexerBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_indexer_batches_total",
			Help: "Batches received on the ingestion channel",
		},
	)

	ScannerDirErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_scanner_directory_errors_total",
			Help: "Directories skipped because they could not be read",
		},
	)
)

// Library and persistence metrics
var (
	LibraryPhotos = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photoframe_library_photos",
			Help: "Photos currently in the library",
		},
	)

	TextCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photoframe_text_cache_entries",
			Help: "Entries currently in the text cache",
		},
	)

	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_snapshot_writes_total",
			Help: "Snapshot file writes by file and outcome",
		},
		[]string{"file", "status"},
	)

	SnapshotWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photoframe_snapshot_write_duration_seconds",
			Help:    "Snapshot write duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"file"},
	)
)

// Selection metrics
var (
	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_selections_total",
			Help: "Photos served by the tier that produced them",
		},
		[]string{"tier"},
	)

	StaleRemovalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_stale_removals_total",
			Help: "Library entries removed because their file vanished",
		},
	)
)

// Text cache and generator metrics
var (
	TextCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_text_cache_lookups_total",
			Help: "Text cache lookups by result (hit, miss, duplicate)",
		},
		[]string{"result"},
	)

	GeneratorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_generator_calls_total",
			Help: "External generation calls by outcome",
		},
		[]string{"status"},
	)

	GeneratorRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoframe_generator_retries_total",
			Help: "Retries after an overloaded response",
		},
	)

	GeneratorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photoframe_generator_duration_seconds",
			Help:    "Wall time of a generation including retries",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
	)

	GeneratorFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_generator_fallbacks_total",
			Help: "Fallback text served instead of a generated entry, by reason",
		},
		[]string{"reason"},
	)
)

// Relocation metrics
var (
	RelocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_relocations_total",
			Help: "Relocations by target bucket and outcome",
		},
		[]string{"bucket", "status"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_filesystem_retry_attempts_total",
			Help: "Filesystem retries after a stale file handle",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_filesystem_retry_failures_total",
			Help: "Filesystem operations that exhausted their retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoframe_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photoframe_filesystem_retry_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation"},
	)
)
