package operation

import (
	"sync"

	"github.com/graphweave/fedcore/internal/gqlerr"
	"github.com/graphweave/fedcore/internal/schema"
)

// Cache is a fingerprint-keyed, read-mostly store of bound Operations (spec
// §2, C2). Its size is bounded by NewCache's maxEntries: once full, the
// entry inserted earliest is dropped. A cache hit does not move an entry,
// so eviction is first-in first-out, not least-recently-used.
// There is no dedicated LRU library anywhere in the retrieval pack (only
// ad-hoc maps), so the eviction list here is hand-rolled rather than pulled
// from a third-party cache package.
type Cache struct {
	mu       sync.RWMutex
	entries  map[uint64]*Operation
	order    []uint64
	maxEntries int
}

// NewCache creates a Cache that holds at most maxEntries bound operations.
// maxEntries <= 0 means unbounded.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[uint64]*Operation),
		maxEntries: maxEntries,
	}
}

// GetOrParse returns the cached Operation for fingerprint, or parses,
// binds, and caches a fresh one. Concurrent misses for the same
// fingerprint both parse; the later writer wins, matching the teacher's
// read-mostly atomic.Value pattern elsewhere in this codebase rather than
// adding a singleflight dependency for a cache that is never in the hot
// path under normal operation.
func (c *Cache) GetOrParse(text, operationName string, sch *schema.Schema, schemaVersion int) (*Operation, *gqlerr.Error) {
	fp := Fingerprint(text, operationName, schemaVersion)

	c.mu.RLock()
	op, ok := c.entries[fp]
	c.mu.RUnlock()
	if ok {
		return op, nil
	}

	op, gerr := Parse(text, operationName, sch)
	if gerr != nil {
		return nil, gerr
	}
	op.Fingerprint = fp

	c.mu.Lock()
	c.put(fp, op)
	c.mu.Unlock()

	return op, nil
}

func (c *Cache) put(fp uint64, op *Operation) {
	if _, exists := c.entries[fp]; !exists {
		c.order = append(c.order, fp)
	}
	c.entries[fp] = op

	if c.maxEntries <= 0 || len(c.entries) <= c.maxEntries {
		return
	}
	evict := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, evict)
}

// Len reports the number of cached operations.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
