// Package logging provides the leveled logger used across photoframe.
//
// Levels, lowest first:
//   - DEBUG: verbose scan and generator tracing
//   - INFO: operational messages (index runs, snapshots, startup)
//   - WARN: recoverable problems (unreadable directories, fallbacks)
//   - ERROR: failed operations
//   - FATAL: terminates the process
//
// The level comes from DEBUG=true or LOG_LEVEL and can be overridden with
// SetLevel.
package logging
