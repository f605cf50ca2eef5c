// Package main provides the entry point for the PhotoFrame application.
//
// PhotoFrame indexes a photo library on local or network storage and
// serves it to a kiosk display one photo at a time. Each photo is paired
// with a short poem or quotation produced by a vision model and cached on
// disk, so every photo is sent to the model at most once.
//
// # Commands
//
//   - serve (default): loads the library and text cache snapshots, starts
//     the indexer, the nightly full scan and the snapshot writer, and runs
//     the frame API and the metrics server.
//   - scan: runs one scan and prints the batch stream as NDJSON.
//   - version: prints build information.
//
// # Configuration
//
// Settings come from defaults, an optional photoframe.yaml in the working
// directory or $HOME, and PHOTOFRAME_* environment variables, in increasing
// order of precedence. See [photoframe/internal/startup] for the keys.
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM the HTTP servers stop accepting requests, background
// services are cancelled, and the library snapshot and text cache are
// written one last time.
package main
