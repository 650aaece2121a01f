package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces a snapshot for a path. Prepare is the default.
type LoadFunc func(ctx context.Context, path string) (*Snapshot, error)

// fileKey identifies one version of a file on disk.
type fileKey struct {
	modTime time.Time
	size    int64
}

func (k fileKey) same(o fileKey) bool {
	return k.size == o.size && k.modTime.Equal(o.modTime)
}

type cacheEntry struct {
	key      fileKey
	snapshot *Snapshot
}

// CacheStats reports cache activity.
type CacheStats struct {
	Entries    int       `json:"entries"`
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Loads      int64     `json:"loads"`
	LastLoadAt time.Time `json:"last_load_at,omitempty"`
}

// Cache is a read-through cache of snapshots keyed by file path and
// modification time. A changed file is reloaded on the next lookup and
// concurrent lookups for the same version share a single load.
//
// The shared load is detached from the caller's cancellation: a caller whose
// context ends stops waiting, the others still get the snapshot.
type Cache struct {
	load    LoadFunc
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry
	stats   CacheStats
	// generation is bumped by Invalidate. Loads started under an older
	// generation return their snapshot but do not store it.
	generation uint64
}

// NewCache creates a cache that loads with fn, or Prepare when fn is nil.
func NewCache(fn LoadFunc) *Cache {
	if fn == nil {
		fn = Prepare
	}
	return &Cache{
		load:    fn,
		entries: make(map[string]cacheEntry),
	}
}

// GetOrLoad returns the snapshot for the current version of path, loading it
// when the cache holds none or holds an older version. The boolean reports
// a cache hit.
func (c *Cache) GetOrLoad(ctx context.Context, path string) (*Snapshot, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, fmt.Errorf("%w: %s", ErrFileNotFound, abs)
		}
		return nil, false, fmt.Errorf("%w: stat %s: %v", ErrParse, abs, err)
	}
	key := fileKey{modTime: info.ModTime(), size: info.Size()}

	c.mu.Lock()
	if entry, ok := c.entries[abs]; ok && entry.key.same(key) {
		c.stats.Hits++
		c.mu.Unlock()
		return entry.snapshot, true, nil
	}
	c.stats.Misses++
	generation := c.generation
	c.mu.Unlock()

	loadCtx := context.WithoutCancel(ctx)
	flightKey := fmt.Sprintf("%s|%d|%d|%d", abs, key.modTime.UnixNano(), key.size, generation)
	results := c.group.DoChan(flightKey, func() (interface{}, error) {
		snapshot, err := c.load(loadCtx, abs)
		if err != nil {
			return nil, err
		}
		snapshot.Path = abs
		snapshot.ModTime = key.modTime

		c.mu.Lock()
		c.stats.Loads++
		c.stats.LastLoadAt = snapshot.LoadedAt
		if c.generation == generation {
			c.entries[abs] = cacheEntry{key: key, snapshot: snapshot}
		}
		c.mu.Unlock()
		return snapshot, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*Snapshot), false, nil
	}
}

// Peek returns the cached snapshot for path without touching the file.
func (c *Cache) Peek(path string) (*Snapshot, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[abs]
	return entry.snapshot, ok
}

// Invalidate drops every cached snapshot. Loads already running when it is
// called do not repopulate the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.generation++
}

// Stats returns a copy of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}
