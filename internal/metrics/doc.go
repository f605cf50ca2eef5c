// Package metrics provides Prometheus instrumentation for photoframe.
//
// All metrics are prefixed with "photoframe_" and registered with promauto
// at package init. InitializeMetrics pre-creates every label combination so
// dashboards see zeros instead of gaps.
//
// # Metric Categories
//
//   - HTTP: request counts and latency (middleware)
//   - Indexer: runs by mode and outcome, photos scanned and merged, batches,
//     unreadable directories
//   - Library: photo count, text cache size, snapshot writes
//   - Selection: picks per tier, stale entries removed on existence check
//   - Generator: cache lookups, external calls by outcome, retries, fallbacks
//   - Relocation: moves by bucket and outcome
//   - Filesystem: NFS retry counters, fed through filesystem.Observer
//
// Collector copies library figures into gauges on an interval.
package metrics
