package jmespath

import (
	"container/list"
	"log/slog"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/ardnew/jmes/log"
)

// DefaultCacheCapacity is used when a [Cache] is created with a
// non-positive capacity.
const DefaultCacheCapacity = 256

// cacheEntry is a cache entry stored in the doubly-linked list.
type cacheEntry struct {
	query *Query
	hash  uint64
}

// Cache is a bounded LRU cache of compiled queries keyed by the hash of
// their expression text. Every query it compiles shares the same options,
// so they resolve functions against the same registry.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	ll       *list.List
	items    map[uint64]*list.Element
	logger   log.Logger
	opts     []Option
	capacity int
	mutex    sync.Mutex
}

// NewCache returns a cache holding at most capacity queries compiled with
// opts.
func NewCache(capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	var probe Query
	for _, opt := range opts {
		opt(&probe)
	}

	if probe.registry == nil {
		opts = append([]Option{WithRegistry(Builtins())}, opts...)
	}

	return &Cache{
		ll:       list.New(),
		items:    make(map[uint64]*list.Element, capacity),
		logger:   probe.logger,
		opts:     opts,
		capacity: capacity,
	}
}

// Compile returns the cached query for expr, compiling and caching it on a
// miss. Compile errors are not cached.
func (c *Cache) Compile(expr string) (*Query, error) {
	hash := xxhash.Sum64String(expr)

	q, hit := c.get(hash, expr)

	c.logger.Trace(
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	if hit {
		return q, nil
	}

	q, err := Compile(expr, c.opts...)
	if err != nil {
		return nil, err
	}

	c.set(hash, q)

	return q, nil
}

// Search compiles expr through the cache and searches data with it.
func (c *Cache) Search(expr string, data any) (*Value, error) {
	q, err := c.Compile(expr)
	if err != nil {
		return nil, err
	}

	return q.Search(data)
}

func (c *Cache) get(hash uint64, expr string) (*Query, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	el, ok := c.items[hash]
	if !ok {
		return nil, false
	}

	ent, _ := el.Value.(*cacheEntry)
	if ent.query.text != expr {
		return nil, false
	}

	c.ll.MoveToFront(el)

	return ent.query, true
}

func (c *Cache) set(hash uint64, q *Query) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if el, ok := c.items[hash]; ok {
		el.Value = &cacheEntry{query: q, hash: hash}
		c.ll.MoveToFront(el)

		return
	}

	if c.ll.Len() >= c.capacity {
		if back := c.ll.Back(); back != nil {
			c.ll.Remove(back)

			ent, _ := back.Value.(*cacheEntry)
			delete(c.items, ent.hash)
		}
	}

	c.items[hash] = c.ll.PushFront(&cacheEntry{query: q, hash: hash})
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.ll.Len()
}

// Capacity returns the maximum number of cached queries.
func (c *Cache) Capacity() int { return c.capacity }

// Clear removes every cached query.
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.ll.Init()
	c.items = make(map[uint64]*list.Element, c.capacity)
}
