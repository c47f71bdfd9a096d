package pathobj

import (
	"sync"
	"sync/atomic"
)

// PathCache provides thread-safe caching of parsed paths keyed by their
// string form. Only successfully parsed paths are stored.
type PathCache struct {
	cache  sync.Map // map[string]*CacheEntry
	size   atomic.Int64
	limit  int64
	hits   atomic.Int64
	misses atomic.Int64
	bypass bool
}

// CacheEntry holds a parsed path for a single path string.
type CacheEntry struct {
	path Path
}

// PathCacheOpts configures a PathCache.
type PathCacheOpts struct {
	// MaxEntries bounds the number of stored paths. Once reached, further
	// paths are parsed but not stored. Zero means unbounded.
	MaxEntries int
	// Disabled turns the cache into a plain call to ParsePath.
	Disabled bool
}

// PathCacheStats is a snapshot of cache counters.
type PathCacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// NewPathCache creates a new thread-safe path cache.
func NewPathCache(opts PathCacheOpts) *PathCache {
	return &PathCache{
		limit:  int64(opts.MaxEntries),
		bypass: opts.Disabled,
	}
}

// Parse returns the parsed form of path, parsing and storing it on first
// use. Concurrent callers parsing the same new path may each parse it, but
// all of them end up sharing the entry that was stored first.
func (pc *PathCache) Parse(path string) (Path, error) {
	if pc == nil || pc.bypass {
		return ParsePath(path)
	}

	// Try to load existing entry
	if v, ok := pc.cache.Load(path); ok {
		pc.hits.Add(1)
		return v.(*CacheEntry).path, nil
	}
	pc.misses.Add(1)

	p, err := ParsePath(path)
	if err != nil {
		return Path{}, err
	}

	if pc.limit > 0 && pc.size.Load() >= pc.limit {
		return p, nil
	}

	// LoadOrStore returns the actual stored value
	actual, loaded := pc.cache.LoadOrStore(path, &CacheEntry{path: p})
	if !loaded {
		pc.size.Add(1)
	}
	return actual.(*CacheEntry).path, nil
}

// Get retrieves the cache entry for path if it exists
func (pc *PathCache) Get(path string) (*CacheEntry, bool) {
	if v, ok := pc.cache.Load(path); ok {
		return v.(*CacheEntry), true
	}
	return nil, false
}

// Delete removes the cache entry for path
func (pc *PathCache) Delete(path string) {
	if _, loaded := pc.cache.LoadAndDelete(path); loaded {
		pc.size.Add(-1)
	}
}

// Clear removes all cache entries
func (pc *PathCache) Clear() {
	pc.cache.Range(func(key, _ any) bool {
		pc.Delete(key.(string))
		return true
	})
}

// Len returns the number of stored paths.
func (pc *PathCache) Len() int {
	return int(pc.size.Load())
}

// Stats returns a snapshot of the cache counters.
func (pc *PathCache) Stats() PathCacheStats {
	return PathCacheStats{
		Entries: pc.Len(),
		Hits:    pc.hits.Load(),
		Misses:  pc.misses.Load(),
	}
}

// Path returns the cached path.
func (ce *CacheEntry) Path() Path {
	return ce.path
}
