package frame

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/singleflight"

	"photoframe/internal/filesystem"
	"photoframe/internal/indexer"
	"photoframe/internal/library"
	"photoframe/internal/logging"
	"photoframe/internal/media"
	"photoframe/internal/metrics"
	"photoframe/internal/relocation"
	"photoframe/internal/scanner"
	"photoframe/internal/selection"
	"photoframe/internal/textcache"
)

// maxSelectAttempts bounds how many stale picks one request may discard.
const maxSelectAttempts = 10

var (
	// ErrStorageUnavailable means the photo root cannot be reached.
	ErrStorageUnavailable = errors.New("photo storage unavailable")
	// ErrEmptyLibrary means the root is reachable but holds no photos.
	ErrEmptyLibrary = errors.New("photo library is empty")
)

// TextGenerator produces text for an image. exclude is content the result
// must not repeat.
type TextGenerator interface {
	Generate(ctx context.Context, image []byte, mimeType, exclude string) (textcache.Entry, error)
}

// ImageLoader returns the upload bytes and MIME type for a photo.
type ImageLoader func(path string) ([]byte, string, error)

// Indexer starts background scans.
type Indexer interface {
	Index(ctx context.Context, mode scanner.Mode, rebuild bool) (indexer.Result, error)
	Start(ctx context.Context, mode scanner.Mode, rebuild bool) error
}

// Result is one served photo.
type Result struct {
	Photo library.Photo
	Text  textcache.Entry
	Tier  selection.Tier
	// Fallback is set when Text is the evergreen default.
	Fallback bool
}

// Options wires a Service. Generator may be nil, in which case only cached
// text and the fallback are served.
type Options struct {
	// Context bounds background scans started by Reindex. Defaults to
	// context.Background().
	Context   context.Context
	Root      string
	Store     *library.Store
	Cache     *textcache.Cache
	Policy    *selection.Policy
	Generator TextGenerator
	// LoadImage defaults to media.Prepare.
	LoadImage ImageLoader
	Relocator *relocation.Handler
	Indexer   Indexer
}

// Service implements the frame operations.
type Service struct {
	ctx       context.Context
	root      string
	store     *library.Store
	cache     *textcache.Cache
	policy    *selection.Policy
	gen       TextGenerator
	loadImage ImageLoader
	relocator *relocation.Handler
	indexer   Indexer

	retry  filesystem.RetryConfig
	flight singleflight.Group
	now    func() time.Time
}

// New returns a Service.
func New(opts Options) *Service {
	if opts.LoadImage == nil {
		opts.LoadImage = media.Prepare
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Service{
		ctx:       opts.Context,
		root:      opts.Root,
		store:     opts.Store,
		cache:     opts.Cache,
		policy:    opts.Policy,
		gen:       opts.Generator,
		loadImage: opts.LoadImage,
		relocator: opts.Relocator,
		indexer:   opts.Indexer,
		retry:     filesystem.DefaultRetryConfig(),
		now:       time.Now,
	}
}

// SelectNext picks a photo and attaches its text.
func (s *Service) SelectNext(ctx context.Context) (Result, error) {
	for range maxSelectAttempts {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		photos := s.store.Photos()
		if len(photos) == 0 {
			return Result{}, s.emptyReason()
		}

		photo, tier, _ := s.policy.Select(photos, s.now())

		_, err := filesystem.StatWithRetry(photo.Path, s.retry)
		if err != nil {
			if !s.ExistenceCheck() {
				return Result{}, ErrStorageUnavailable
			}
			if !errors.Is(err, os.ErrNotExist) {
				return Result{}, fmt.Errorf("stat %s: %w", photo.Path, err)
			}
			s.dropStale(photo.Path)
			continue
		}

		metrics.SelectionsTotal.WithLabelValues(string(tier)).Inc()
		text, fallback := s.textFor(ctx, photo.Path)
		return Result{Photo: photo, Text: text, Tier: tier, Fallback: fallback}, nil
	}

	return Result{}, fmt.Errorf("no reachable photo after %d attempts: %w", maxSelectAttempts, ErrEmptyLibrary)
}

func (s *Service) emptyReason() error {
	if !s.ExistenceCheck() {
		return ErrStorageUnavailable
	}
	return ErrEmptyLibrary
}

func (s *Service) dropStale(path string) {
	logging.Info("Photo %s no longer exists, removing from library", path)
	s.store.Remove(path)
	if s.cache.Delete(path) {
		if err := s.cache.Save(); err != nil {
			logging.Error("Failed to save text cache: %v", err)
		}
	}
	metrics.StaleRemovalsTotal.Inc()
}

// ExistenceCheck reports whether the photo root is reachable.
func (s *Service) ExistenceCheck() bool {
	info, err := filesystem.StatWithRetry(s.root, s.retry)
	return err == nil && info.IsDir()
}

// Relocate moves path into target and returns the new path.
func (s *Service) Relocate(path string, target relocation.Bucket) (string, error) {
	return s.relocator.Relocate(path, target)
}

// Omit moves path out of rotation.
func (s *Service) Omit(path string) error {
	return s.relocator.Omit(path)
}

// Delete removes path from disk and from rotation.
func (s *Service) Delete(path string) error {
	return s.relocator.Delete(path)
}

// Reindex starts a background scan of the whole root. full clears the
// library first and drops cached text for photos not found again. The scan
// is bound to the service context, not to the caller's.
func (s *Service) Reindex(full bool) error {
	if !s.ExistenceCheck() {
		return ErrStorageUnavailable
	}
	return s.indexer.Start(s.ctx, scanner.ModeFull, full)
}

// Warm makes sure something can be shown soon after start. With an empty
// library it indexes the favorites folder synchronously; a full scan is
// then started in the background.
func (s *Service) Warm(ctx context.Context) error {
	if !s.ExistenceCheck() {
		return ErrStorageUnavailable
	}
	if s.store.Len() == 0 {
		if _, err := s.indexer.Index(ctx, scanner.ModeDefaults, false); err != nil {
			logging.Warn("Favorites index failed: %v", err)
		}
	}
	return s.indexer.Start(ctx, scanner.ModeFull, false)
}

// Stats reports library figures for the metrics collector.
func (s *Service) Stats() metrics.Stats {
	return metrics.Stats{
		Photos:    s.store.Len(),
		CacheSize: s.cache.Len(),
		Dirty:     s.store.Dirty(),
	}
}
