// Package textcache maps photo paths to the text generated for them and
// persists the mapping as a JSON snapshot.
package textcache

import (
	"fmt"
	"maps"
	"path/filepath"
	"sync"
	"time"

	"photoframe/internal/logging"
	"photoframe/internal/metrics"
	"photoframe/internal/persist"
)

// CacheFile is the snapshot file name inside the data directory.
const CacheFile = "text_cache.json"

// Cache holds path -> Entry with an inverted content index so duplicate
// detection does not scan every entry.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]Entry
	byContent map[string]map[string]struct{}
	saveMu    sync.Mutex
	path      string
}

// New returns an empty cache persisting to CacheFile under dataDir. An
// empty dataDir disables persistence.
func New(dataDir string) *Cache {
	c := &Cache{
		entries:   make(map[string]Entry),
		byContent: make(map[string]map[string]struct{}),
	}
	if dataDir != "" {
		c.path = filepath.Join(dataDir, CacheFile)
	}
	return c
}

// Load reads the snapshot file, replacing the current contents. A missing
// file leaves the cache empty.
func (c *Cache) Load() error {
	if c.path == "" {
		return nil
	}

	entries := make(map[string]Entry)
	if _, err := persist.ReadJSON(c.path, &entries); err != nil {
		return fmt.Errorf("load text cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry, len(entries))
	c.byContent = make(map[string]map[string]struct{})
	for path, e := range entries {
		c.putLocked(path, e)
	}
	logging.Info("Loaded %d cached texts from %s", len(entries), c.path)
	return nil
}

// Save writes the whole cache to disk.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	snapshot := c.Entries()
	start := time.Now()
	err := persist.WriteJSON(c.path, snapshot)
	metrics.SnapshotWriteDuration.WithLabelValues("text_cache").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SnapshotWritesTotal.WithLabelValues("text_cache", "error").Inc()
		return fmt.Errorf("save text cache: %w", err)
	}
	metrics.SnapshotWritesTotal.WithLabelValues("text_cache", "success").Inc()
	return nil
}

// Get returns the entry stored for path.
func (c *Cache) Get(path string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[path]
	return e, ok
}

// Put stores e under path, replacing any previous entry.
func (c *Cache) Put(path string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteLocked(path)
	c.putLocked(path, e)
}

// PutIf stores e under path only if keep(path) holds, and reports whether
// it did. keep runs under the cache lock, so a concurrent Rekey or Delete
// cannot slip between the check and the write.
func (c *Cache) PutIf(path string, e Entry, keep func(path string) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !keep(path) {
		return false
	}
	c.deleteLocked(path)
	c.putLocked(path, e)
	return true
}

// Delete removes path and reports whether it was present.
func (c *Cache) Delete(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteLocked(path)
}

// Rekey moves the entry under oldPath to newPath. It reports whether
// oldPath had an entry. Any entry already under newPath is replaced.
func (c *Cache) Rekey(oldPath, newPath string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[oldPath]
	if !ok {
		return false
	}
	if oldPath == newPath {
		return true
	}
	c.deleteLocked(oldPath)
	c.deleteLocked(newPath)
	c.putLocked(newPath, e)
	return true
}

// DuplicateOf returns another path whose entry has byte-identical content
// to the entry under path.
func (c *Cache) DuplicateOf(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[path]
	if !ok {
		return "", false
	}
	for other := range c.byContent[e.Content] {
		if other != path {
			return other, true
		}
	}
	return "", false
}

// Retain drops every entry whose path keep rejects and returns how many
// were dropped.
func (c *Cache) Retain(keep func(path string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for path := range c.entries {
		if !keep(path) {
			c.deleteLocked(path)
			dropped++
		}
	}
	return dropped
}

// CountUnless returns how many entries keep rejects, without dropping them.
func (c *Cache) CountUnless(keep func(path string) bool) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for path := range c.entries {
		if !keep(path) {
			n++
		}
	}
	return n
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of the mapping.
func (c *Cache) Entries() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}

func (c *Cache) putLocked(path string, e Entry) {
	c.entries[path] = e
	set, ok := c.byContent[e.Content]
	if !ok {
		set = make(map[string]struct{})
		c.byContent[e.Content] = set
	}
	set[path] = struct{}{}
}

func (c *Cache) deleteLocked(path string) bool {
	e, ok := c.entries[path]
	if !ok {
		return false
	}
	delete(c.entries, path)
	if set := c.byContent[e.Content]; set != nil {
		delete(set, path)
		if len(set) == 0 {
			delete(c.byContent, e.Content)
		}
	}
	return true
}
