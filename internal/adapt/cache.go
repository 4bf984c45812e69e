package adapt

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"

	"github.com/verblevel/verblevel/internal/level"
)

// DefaultCacheCapacity bounds the LRU cache when no explicit capacity is
// configured.
const DefaultCacheCapacity = 128

// Cache stores adaptation results keyed by content hash. The orchestrator
// consults it before every external call; implementations choose their own
// eviction policy.
type Cache interface {
	Get(key string) (Result, bool)
	Put(key string, r Result)
}

// cacheKey derives the cache key for one (text, target level) pair. The
// NUL separator keeps distinct pairs from colliding.
func cacheKey(text string, target level.CEFR) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(target))
	return hex.EncodeToString(h.Sum(nil))
}

// LRU is a fixed-capacity least-recently-used Cache. It is not safe for
// concurrent use; the orchestrator owning it serializes access.
type LRU struct {
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type lruEntry struct {
	key    string
	result Result
}

// NewLRU returns an empty cache holding at most capacity entries.
// Non-positive capacities fall back to DefaultCacheCapacity.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached result for key and marks it most recently used.
func (c *LRU) Get(key string) (Result, bool) {
	el, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).result, true
}

// Put stores r under key, evicting the least recently used entry when the
// cache is full.
func (c *LRU) Put(key string, r Result) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry).result = r
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&lruEntry{key: key, result: r})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry).key)
	}
}

// Len reports the number of cached entries.
func (c *LRU) Len() int {
	return c.order.Len()
}
