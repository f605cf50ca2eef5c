package frame

import (
	"context"
	"errors"

	"photoframe/internal/generator"
	"photoframe/internal/logging"
	"photoframe/internal/metrics"
	"photoframe/internal/textcache"
)

type generated struct {
	entry    textcache.Entry
	fallback bool
}

// textFor returns the text for path, generating it on a miss or when the
// cached content is also assigned to another photo. The second result is
// true when the fallback entry was returned.
func (s *Service) textFor(ctx context.Context, path string) (textcache.Entry, bool) {
	var exclude string

	entry, ok := s.cache.Get(path)
	switch {
	case !ok:
		metrics.TextCacheLookups.WithLabelValues("miss").Inc()
	default:
		other, dup := s.cache.DuplicateOf(path)
		if !dup {
			metrics.TextCacheLookups.WithLabelValues("hit").Inc()
			return entry, false
		}
		metrics.TextCacheLookups.WithLabelValues("duplicate").Inc()
		logging.Info("Text for %s duplicates %s, regenerating", path, other)
		exclude = entry.Content
	}

	if s.gen == nil {
		if ok {
			return entry, false
		}
		return s.useFallback("generator_disabled"), true
	}

	// The shared call outlives any one caller, so it must not inherit a
	// request's cancellation.
	v, _, _ := s.flight.Do(path, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), path, exclude), nil
	})
	res := v.(generated)
	return res.entry, res.fallback
}

func (s *Service) generate(ctx context.Context, path, exclude string) generated {
	image, mime, err := s.loadImage(path)
	if err != nil {
		logging.Warn("Could not read %s for text generation: %v", path, err)
		return generated{s.useFallback("image_unreadable"), true}
	}

	entry, err := s.gen.Generate(ctx, image, mime, exclude)
	if err != nil {
		if errors.Is(err, generator.ErrPermanent) {
			logging.Error("Text generation is misconfigured: %v", err)
		} else {
			logging.Warn("Text generation for %s failed: %v", path, err)
		}
		return generated{s.useFallback("generator_error"), true}
	}

	if exclude != "" && entry.Content == exclude {
		logging.Warn("Generator repeated the excluded text for %s", path)
		return generated{s.useFallback("repeated_exclusion"), true}
	}

	// The photo may have been omitted, deleted or moved while the call was
	// in flight; do not resurrect a cache key for it. Relocation updates the
	// store before the cache, so checking membership under the cache lock
	// is enough.
	if !s.cache.PutIf(path, entry, s.store.Contains) {
		logging.Debug("Photo %s left the library during generation, not caching", path)
		return generated{entry, false}
	}

	if err := s.cache.Save(); err != nil {
		logging.Error("Failed to save text cache: %v", err)
	}
	return generated{entry, false}
}

func (s *Service) useFallback(reason string) textcache.Entry {
	metrics.GeneratorFallbacksTotal.WithLabelValues(reason).Inc()
	return generator.Fallback()
}
