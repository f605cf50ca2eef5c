// Package startup handles configuration loading and the sectioned
// startup/shutdown log output.
//
// # Configuration
//
// [LoadConfig] layers, from lowest to highest precedence: built-in
// defaults, an optional photoframe.yaml (current directory, then $HOME, or
// an explicit path), and PHOTOFRAME_* environment variables. Keys:
//
//   - photo_root: root of the photo tree (default: /photos)
//   - data_dir: where library.json and text_cache.json live (default: /data)
//   - port: HTTP server port (default: 8080)
//   - metrics_port: Prometheus metrics server port (default: 9090)
//   - metrics_enabled: serve /metrics (default: true)
//   - favorites_dir, unfavorited_dir, omitted_dir: bucket folder names
//     under photo_root (defaults: Favorites, Unfavorited, Omitted)
//   - excluded_dirs: comma separated folder names never scanned; the
//     omitted folder is always excluded
//   - snapshot_interval: library flush interval (default: 1m)
//   - nightly_hour: local hour of the daily full scan (default: 3)
//   - recent_days, anniversary_days, smart_weight, favorite_weight:
//     selection policy tuning
//   - gemini_api_key, gemini_model: text generator; without a key only
//     cached and fallback text is shown
//   - generator_attempts, generator_initial_delay: retry budget for
//     overloaded generator calls
//   - memory_limit: memory available to the process, e.g. "512MiB" (default: unset)
//   - memory_ratio: share of memory_limit used for GOMEMLIMIT (default: 0.85)
//   - log_health_checks: log /health requests (default: false)
//
// LOG_LEVEL (debug, info, warn, error) is read by package logging directly.
package startup
