package scanner

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"photoframe/internal/filesystem"
	"photoframe/internal/library"
	"photoframe/internal/logging"
	"photoframe/internal/mediatypes"
	"photoframe/internal/metrics"
)

// Scanner walks a photo tree depth-first.
type Scanner struct {
	root     string
	excluded map[string]bool
	retry    filesystem.RetryConfig
}

// New returns a scanner rooted at root that skips any directory whose name
// matches one of excluded (case-insensitive).
func New(root string, excluded []string) *Scanner {
	ex := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		if name = strings.TrimSpace(name); name != "" {
			ex[strings.ToLower(name)] = true
		}
	}
	return &Scanner{
		root:     root,
		excluded: ex,
		retry:    filesystem.DefaultRetryConfig(),
	}
}

// Root returns the directory the scanner walks.
func (s *Scanner) Root() string {
	return s.root
}

// Photos returns the photos under the root. The sequence is lazy and every
// range over it starts a fresh walk. Entries of each directory are visited
// in descending name order so that newer year folders come first.
//
// Unreadable directories are logged and skipped. A missing root yields
// nothing; use filesystem.Exists to tell that apart from an empty tree.
func (s *Scanner) Photos(ctx context.Context) iter.Seq[library.Photo] {
	return func(yield func(library.Photo) bool) {
		root, err := filepath.Abs(s.root)
		if err != nil {
			logging.Warn("Cannot resolve scan root %s: %v", s.root, err)
			return
		}
		s.walk(ctx, root, yield)
	}
}

// walk visits dir and returns false once the consumer stopped or ctx ended.
func (s *Scanner) walk(ctx context.Context, dir string, yield func(library.Photo) bool) bool {
	entries, err := filesystem.ReadDirWithRetry(dir, s.retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug("Scan directory %s does not exist", dir)
		} else {
			logging.Warn("Skipping unreadable directory %s: %v", dir, err)
			metrics.ScannerDirErrors.Inc()
		}
		return ctx.Err() == nil
	}

	slices.Reverse(entries)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return false
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		mode := entry.Type()
		switch {
		case mode&fs.ModeSymlink != 0:
			logging.Debug("Skipping symlink %s", filepath.Join(dir, name))
			continue
		case entry.IsDir():
			if s.excluded[strings.ToLower(name)] {
				continue
			}
			if !s.walk(ctx, filepath.Join(dir, name), yield) {
				return false
			}
		case mode.IsRegular():
			if !mediatypes.IsImage(name) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				logging.Warn("Cannot stat %s: %v", filepath.Join(dir, name), err)
				continue
			}
			if !yield(library.Photo{Path: filepath.Join(dir, name), CreatedAt: info.ModTime()}) {
				return false
			}
		}
	}
	return true
}
