// Package handlers provides the JSON HTTP API of the photo frame.
//
// It includes handlers for:
//   - Serving the next photo and its text
//   - Streaming photo bytes for indexed paths
//   - Relocating, omitting and deleting photos
//   - Starting a reindex
//   - Health checks and version information
package handlers
