package cache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/leofalp/aibridge/providers/ai"
	"github.com/leofalp/aibridge/providers/observability"
)

// DefaultMemoryTTL is the lifetime of an in-memory tier entry when no
// override is supplied.
const DefaultMemoryTTL = 5 * time.Minute

// memEntry is one in-memory tier record. The timer fires the lazy cleanup
// for this entry independently of the persistent tier.
type memEntry struct {
	data  []byte
	entry Entry
	timer *time.Timer
}

// ContentCache is the two-tier content-addressable store. All mutation of
// the in-memory map and its eviction timers happens inside this type.
type ContentCache struct {
	dir string
	ttl time.Duration
	mem *xsync.Map[string, *memEntry]
	ix  *index
}

// Option customizes a ContentCache.
type Option func(*ContentCache)

// WithMemoryTTL overrides the in-memory tier entry lifetime.
func WithMemoryTTL(ttl time.Duration) Option {
	return func(c *ContentCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// New opens a cache rooted at dir. Artifacts live under capability-scoped
// subdirectories; metadata goes to a SQLite index file next to them.
func New(dir string, opts ...Option) (*ContentCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &ai.CacheIOError{Op: "mkdir", Path: dir, Err: err}
	}

	ix, err := openIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, &ai.CacheIOError{Op: "open index", Path: dir, Err: err}
	}

	c := &ContentCache{
		dir: dir,
		ttl: DefaultMemoryTTL,
		mem: xsync.NewMap[string, *memEntry](),
		ix:  ix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get looks up key, consulting the in-memory tier first and the persistent
// tier second. A disk hit repopulates the memory tier. Index or file read
// failures are logged and reported as a miss: the cache is off the critical
// path and must never fail a request.
func (c *ContentCache) Get(ctx context.Context, key Key) ([]byte, Entry, bool) {
	span := observability.SpanFromContext(ctx)

	if me, ok := c.mem.Load(string(key)); ok {
		if span != nil {
			span.AddEvent(observability.EventCacheHit,
				observability.String(observability.AttrCacheKey, string(key)),
				observability.String(observability.AttrCacheTier, "memory"),
			)
		}
		return me.data, me.entry, true
	}

	entry, found, err := c.ix.get(key)
	if err != nil {
		slog.Warn("cache index read failed", "key", string(key), "error", err.Error())
		return nil, Entry{}, false
	}
	if !found {
		if span != nil {
			span.AddEvent(observability.EventCacheMiss,
				observability.String(observability.AttrCacheKey, string(key)),
			)
		}
		return nil, Entry{}, false
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		slog.Warn("cache artifact read failed", "path", entry.Path, "error", err.Error())
		return nil, Entry{}, false
	}

	if span != nil {
		span.AddEvent(observability.EventCacheHit,
			observability.String(observability.AttrCacheKey, string(key)),
			observability.String(observability.AttrCacheTier, "disk"),
			observability.String(observability.AttrCachePath, entry.Path),
		)
	}

	c.storeMemory(key, data, entry)
	return data, entry, true
}

// Put persists data for key: disk first for durability, then the in-memory
// tier. The artifact file is named by the key hash with the format as its
// extension, under a directory scoped to the capability.
func (c *ContentCache) Put(ctx context.Context, cap ai.Capability, key Key, data []byte, format string) (Entry, error) {
	capDir := filepath.Join(c.dir, string(cap))
	if err := os.MkdirAll(capDir, 0o755); err != nil {
		return Entry{}, &ai.CacheIOError{Op: "mkdir", Path: capDir, Err: err}
	}

	path := filepath.Join(capDir, string(key)+"."+format)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Entry{}, &ai.CacheIOError{Op: "write", Path: path, Err: err}
	}

	entry := Entry{
		Key:        key,
		Capability: cap,
		Path:       path,
		Format:     format,
		Size:       int64(len(data)),
		CreatedAt:  time.Now(),
	}

	if err := c.ix.put(entry); err != nil {
		// The artifact is on disk; a failed index write only costs future
		// disk-tier lookups.
		slog.Warn("cache index write failed", "key", string(key), "error", err.Error())
	}

	c.storeMemory(key, data, entry)

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventCacheWrite,
			observability.String(observability.AttrCacheKey, string(key)),
			observability.String(observability.AttrCachePath, path),
			observability.Int(observability.AttrHTTPResponseBodySize, len(data)),
		)
	}

	return entry, nil
}

// Entries lists the persistent-tier metadata for one capability.
func (c *ContentCache) Entries(cap ai.Capability) ([]Entry, error) {
	entries, err := c.ix.list(cap)
	if err != nil {
		return nil, &ai.CacheIOError{Op: "list", Path: c.dir, Err: err}
	}
	return entries, nil
}

// Clear removes every entry for one capability from both tiers. This is the
// only way persistent entries are evicted.
func (c *ContentCache) Clear(cap ai.Capability) error {
	c.mem.Range(func(key string, me *memEntry) bool {
		if me.entry.Capability == cap {
			me.timer.Stop()
			c.mem.Delete(key)
		}
		return true
	})

	if err := c.ix.deleteCapability(cap); err != nil {
		return &ai.CacheIOError{Op: "clear index", Path: c.dir, Err: err}
	}

	capDir := filepath.Join(c.dir, string(cap))
	if err := os.RemoveAll(capDir); err != nil {
		return &ai.CacheIOError{Op: "clear", Path: capDir, Err: err}
	}
	return nil
}

// Close stops all eviction timers and closes the metadata index.
func (c *ContentCache) Close() error {
	c.mem.Range(func(key string, me *memEntry) bool {
		me.timer.Stop()
		c.mem.Delete(key)
		return true
	})
	return c.ix.close()
}

// storeMemory inserts or refreshes an in-memory entry with a fresh eviction
// timer. A replaced entry's timer is stopped so it cannot evict the new one.
func (c *ContentCache) storeMemory(key Key, data []byte, entry Entry) {
	me := &memEntry{data: data, entry: entry}
	me.timer = time.AfterFunc(c.ttl, func() {
		c.mem.Compute(string(key), func(old *memEntry, loaded bool) (*memEntry, xsync.ComputeOp) {
			if loaded && old == me {
				return nil, xsync.DeleteOp
			}
			return old, xsync.CancelOp
		})
	})

	if prev, ok := c.mem.LoadAndStore(string(key), me); ok {
		prev.timer.Stop()
	}
}
