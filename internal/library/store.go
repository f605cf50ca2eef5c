package library

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"photoframe/internal/logging"
)

var (
	// ErrNotFound is returned by Rekey when the old path is not a member.
	ErrNotFound = errors.New("photo not in library")
	// ErrExists is returned by Rekey when the new path already belongs to
	// another member.
	ErrExists = errors.New("destination path already in library")
)

// Snapshotter persists a copy of the library.
type Snapshotter interface {
	SaveLibrary(photos []Photo) error
}

// Store owns the in-memory photo library: an insertion-ordered slice plus a
// path index. Every mutation updates both under mu, so readers never see
// them disagree.
//
// The dirty flag is kept as a pair of generation counters. A snapshot
// clears it only when nothing changed while the snapshot was being written.
type Store struct {
	mu     sync.RWMutex
	photos []Photo
	index  map[string]int

	generation uint64
	saved      uint64

	snapMu sync.Mutex
	snap   Snapshotter
}

// NewStore returns an empty store that snapshots through snap. snap may be
// nil, in which case SnapshotIfDirty only clears the flag.
func NewStore(snap Snapshotter) *Store {
	return &Store{
		index: make(map[string]int),
		snap:  snap,
	}
}

// Load replaces the contents with photos, dropping duplicate paths. The
// store is clean afterwards since the data came from a snapshot.
func (s *Store) Load(photos []Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.photos = make([]Photo, 0, len(photos))
	s.index = make(map[string]int, len(photos))
	for _, p := range photos {
		if _, ok := s.index[p.Path]; ok {
			continue
		}
		s.index[p.Path] = len(s.photos)
		s.photos = append(s.photos, p)
	}
	s.generation++
	s.saved = s.generation
}

// Merge inserts every photo whose path is not already known and returns how
// many were added. Replaying the same batch is a no-op.
func (s *Store) Merge(batch []Photo) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, p := range batch {
		if _, ok := s.index[p.Path]; ok {
			continue
		}
		s.index[p.Path] = len(s.photos)
		s.photos = append(s.photos, p)
		added++
	}
	if added > 0 {
		s.generation++
	}
	return added
}

// Remove deletes path and reports whether it was present.
func (s *Store) Remove(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[path]
	if !ok {
		return false
	}
	s.photos = slices.Delete(s.photos, i, i+1)
	delete(s.index, path)
	for j := i; j < len(s.photos); j++ {
		s.index[s.photos[j].Path] = j
	}
	s.generation++
	return true
}

// Rekey changes the path of a member in place, keeping its position and
// creation time.
func (s *Store) Rekey(oldPath, newPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[oldPath]
	if !ok {
		return fmt.Errorf("rekey %s: %w", oldPath, ErrNotFound)
	}
	if oldPath == newPath {
		return nil
	}
	if _, taken := s.index[newPath]; taken {
		return fmt.Errorf("rekey %s -> %s: %w", oldPath, newPath, ErrExists)
	}

	s.photos[i].Path = newPath
	delete(s.index, oldPath)
	s.index[newPath] = i
	s.generation++
	return nil
}

// Get returns the member stored under path.
func (s *Store) Get(path string) (Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[path]
	if !ok {
		return Photo{}, false
	}
	return s.photos[i], true
}

// Contains reports whether path is a member.
func (s *Store) Contains(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[path]
	return ok
}

// Len returns the number of photos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// Photos returns a copy of the library in insertion order.
func (s *Store) Photos() []Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.photos)
}

// Clear empties the library. Only a full rebuild calls this.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.photos = nil
	s.index = make(map[string]int)
	s.generation++
}

// Dirty reports whether there are mutations not yet written by a snapshot.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation != s.saved
}

// MarkDirty forces the next SnapshotIfDirty to write.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// SnapshotIfDirty writes the library through the Snapshotter when there are
// unsaved mutations. It reports whether a write happened. The write runs
// without holding the library lock; mutations that land during the write
// keep the store dirty.
func (s *Store) SnapshotIfDirty() (bool, error) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	s.mu.RLock()
	if s.generation == s.saved {
		s.mu.RUnlock()
		return false, nil
	}
	gen := s.generation
	photos := slices.Clone(s.photos)
	s.mu.RUnlock()

	if s.snap != nil {
		if err := s.snap.SaveLibrary(photos); err != nil {
			return false, fmt.Errorf("snapshot library: %w", err)
		}
	}

	s.mu.Lock()
	if gen > s.saved {
		s.saved = gen
	}
	s.mu.Unlock()

	logging.Debug("Library snapshot written (%d photos)", len(photos))
	return true, nil
}
