// Package generator produces the text shown next to a photo.
//
// A Generator wraps a Model (the external multimodal call), builds the
// prompt, retries overload-class failures with doubling backoff and
// decodes the reply into a textcache.Entry. Replies that fail schema
// validation surface as ErrMalformed so callers can fall back to
// Fallback() without caching it.
package generator
