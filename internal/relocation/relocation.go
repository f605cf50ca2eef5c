// Package relocation moves photos between the logical buckets of the photo
// tree and keeps the library and text cache keyed by the new path.
package relocation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photoframe/internal/filesystem"
	"photoframe/internal/library"
	"photoframe/internal/logging"
	"photoframe/internal/metrics"
	"photoframe/internal/textcache"
)

// Bucket is a logical location in the photo tree.
type Bucket string

const (
	// BucketNormal is anywhere outside the named bucket folders.
	BucketNormal      Bucket = "normal"
	BucketFavorite    Bucket = "favorite"
	BucketUnfavorited Bucket = "unfavorited"
	BucketOmitted     Bucket = "omitted"
)

var (
	// ErrInvalidBucket is returned for unknown buckets and for BucketNormal
	// as a destination.
	ErrInvalidBucket = errors.New("invalid bucket")
	// ErrSourceMissing is returned when the file to move is gone.
	ErrSourceMissing = errors.New("source file missing")
	// ErrNotIndexed is returned for paths that are not library members.
	ErrNotIndexed = errors.New("photo not in library")
)

// ParseBucket validates a bucket name.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(s); b {
	case BucketNormal, BucketFavorite, BucketUnfavorited, BucketOmitted:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBucket, s)
}

// Dirs names the bucket folders directly under the photo root.
type Dirs struct {
	Favorites   string
	Unfavorited string
	Omitted     string
}

// DefaultDirs returns the stock folder names.
func DefaultDirs() Dirs {
	return Dirs{
		Favorites:   "Favorites",
		Unfavorited: "Unfavorited",
		Omitted:     "Omitted",
	}
}

// Handler performs relocations against one photo root.
type Handler struct {
	root  string
	dirs  Dirs
	store *library.Store
	cache *textcache.Cache
	retry filesystem.RetryConfig
	now   func() time.Time
}

// New returns a Handler. cache may be nil.
func New(root string, dirs Dirs, store *library.Store, cache *textcache.Cache) *Handler {
	return &Handler{
		root:  root,
		dirs:  dirs,
		store: store,
		cache: cache,
		retry: filesystem.DefaultRetryConfig(),
		now:   time.Now,
	}
}

// Dir returns the absolute folder of a destination bucket.
func (h *Handler) Dir(b Bucket) (string, error) {
	var name string
	switch b {
	case BucketFavorite:
		name = h.dirs.Favorites
	case BucketUnfavorited:
		name = h.dirs.Unfavorited
	case BucketOmitted:
		name = h.dirs.Omitted
	default:
		return "", fmt.Errorf("%w: %q is not a destination", ErrInvalidBucket, b)
	}
	if name == "" {
		return "", fmt.Errorf("%w: no folder configured for %q", ErrInvalidBucket, b)
	}
	return filepath.Join(h.root, name), nil
}

// BucketOf reports which bucket path currently lives in.
func (h *Handler) BucketOf(path string) Bucket {
	p := library.Photo{Path: path}
	for _, b := range []Bucket{BucketFavorite, BucketUnfavorited, BucketOmitted} {
		if dir, err := h.Dir(b); err == nil && p.IsUnder(dir) {
			return b
		}
	}
	return BucketNormal
}

// Relocate moves path into target and rekeys the library and text cache.
// It returns the new path. A failed move leaves memory untouched.
// Relocating into the omitted bucket behaves like Omit: the photo leaves
// the library and its text is dropped.
func (h *Handler) Relocate(path string, target Bucket) (newPath string, err error) {
	defer func() { record(target, err) }()

	if _, err := h.Dir(target); err != nil {
		return "", err
	}
	if target == BucketOmitted {
		return h.omit(path)
	}
	if h.BucketOf(path) == target {
		if err := h.check(path); err != nil {
			return "", err
		}
		return path, nil
	}

	newPath, err = h.move(path, target)
	if err != nil {
		return "", err
	}

	if err := h.store.Rekey(path, newPath); err != nil {
		// The file has moved; the next existence check drops the stale
		// library entry. Its text goes now so no cache key outlives it.
		logging.Error("Moved %s to %s but could not rekey library: %v", path, newPath, err)
		if h.cache != nil && h.cache.Delete(path) {
			h.saveCache()
		}
	} else if h.cache != nil && h.cache.Rekey(path, newPath) {
		h.saveCache()
	}

	logging.Info("Relocated %s to %s", path, newPath)
	return newPath, nil
}

// Omit moves path into the omitted bucket and forgets it.
func (h *Handler) Omit(path string) (err error) {
	defer func() { record(BucketOmitted, err) }()

	_, err = h.omit(path)
	return err
}

// omit forgets path and, unless it already lives there, moves it into the
// omitted bucket. It returns where the file ended up.
func (h *Handler) omit(path string) (string, error) {
	if h.BucketOf(path) == BucketOmitted {
		if err := h.check(path); err != nil {
			return "", err
		}
		h.forget(path)
		logging.Info("Omitted %s", path)
		return path, nil
	}

	newPath, err := h.move(path, BucketOmitted)
	if err != nil {
		return "", err
	}
	h.forget(path)
	logging.Info("Omitted %s (moved to %s)", path, newPath)
	return newPath, nil
}

// Delete removes the file at path and forgets it. A file that is already
// gone is still forgotten.
func (h *Handler) Delete(path string) (err error) {
	defer func() { recordLabel("deleted", err) }()

	if !h.store.Contains(path) {
		return fmt.Errorf("delete %s: %w", path, ErrNotIndexed)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	h.forget(path)
	logging.Info("Deleted %s", path)
	return nil
}

func (h *Handler) check(path string) error {
	if !h.store.Contains(path) {
		return fmt.Errorf("%s: %w", path, ErrNotIndexed)
	}
	info, err := filesystem.StatWithRetry(path, h.retry)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrSourceMissing)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, ErrSourceMissing)
	}
	return nil
}

func (h *Handler) move(path string, target Bucket) (string, error) {
	dir, err := h.Dir(target)
	if err != nil {
		return "", err
	}
	if err := h.check(path); err != nil {
		return "", err
	}

	dst := filesystem.UniqueDestination(dir, filepath.Base(path), h.now())
	if err := filesystem.Move(path, dst); err != nil {
		return "", fmt.Errorf("move %s to %s: %w", path, target, err)
	}
	return dst, nil
}

func (h *Handler) forget(path string) {
	h.store.Remove(path)
	if h.cache != nil && h.cache.Delete(path) {
		h.saveCache()
	}
}

func (h *Handler) saveCache() {
	if err := h.cache.Save(); err != nil {
		logging.Error("Failed to save text cache: %v", err)
	}
}

func record(target Bucket, err error) {
	recordLabel(string(target), err)
}

func recordLabel(bucket string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RelocationsTotal.WithLabelValues(bucket, status).Inc()
}
