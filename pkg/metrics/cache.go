package metrics

import "sync"

// lruNode is an intrusive doubly-linked-list entry, the same shape as the
// teacher's pkg/lrucache.cacheEntry, generalized with Go generics so the
// same list code backs both CachedInput (V = InputMetric) and CachedOutput
// (V = OutputMetric) without an interface{} box.
type lruNode[V any] struct {
	key        string
	value      V
	next, prev *lruNode[V]
}

// lruCache is a fixed-capacity, thread-safe LRU keyed by string. Unlike the
// teacher's version it has no async-compute/wait machinery: constructing an
// InputMetric/OutputMetric handle is cheap and never blocks, so callers
// compute under the same critical section that does the cache lookup.
type lruCache[V any] struct {
	mu         sync.Mutex
	capacity   int
	entries    map[string]*lruNode[V]
	head, tail *lruNode[V]
}

func newLRUCache[V any](capacity int) *lruCache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &lruCache[V]{capacity: capacity, entries: make(map[string]*lruNode[V], capacity)}
}

// getOrCreate returns the cached value for key, or calls compute to build
// one, cache it and possibly evict the least-recently-used entry.
func (c *lruCache[V]) getOrCreate(key string, compute func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.entries[key]; ok {
		c.moveToFront(node)
		return node.value
	}

	node := &lruNode[V]{key: key, value: compute()}
	c.entries[key] = node
	c.insertFront(node)
	if len(c.entries) > c.capacity {
		c.evictTail()
	}
	return node.value
}

func (c *lruCache[V]) insertFront(node *lruNode[V]) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *lruCache[V]) unlink(node *lruNode[V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.prev, node.next = nil, nil
}

func (c *lruCache[V]) moveToFront(node *lruNode[V]) {
	if c.head == node {
		return
	}
	c.unlink(node)
	c.insertFront(node)
}

func (c *lruCache[V]) evictTail() {
	tail := c.tail
	if tail == nil {
		return
	}
	c.unlink(tail)
	delete(c.entries, tail.key)
}

// CachedInput memoizes (name, kind) → InputMetric behind an LRU of size
// capacity, so repeated lookups of the same metric skip the inner scope's
// (possibly non-trivial) NewMetric construction. Eviction discards the
// cached handle only; the wrapped sink's own metric state, if any, is owned
// by the inner scope's lifetime and is not torn down (spec.md §4.5).
type CachedInput struct {
	inner InputScope
	cache *lruCache[InputMetric]
}

// NewCachedInput wraps inner with an LRU of the given capacity.
func NewCachedInput(inner InputScope, capacity int) *CachedInput {
	return &CachedInput{inner: inner, cache: newLRUCache[InputMetric](capacity)}
}

func (c *CachedInput) NewMetric(name MetricName, kind Kind) InputMetric {
	key := newMetricId(kind, name).Key()
	return c.cache.getOrCreate(key, func() InputMetric {
		return c.inner.NewMetric(name, kind)
	})
}

func (c *CachedInput) Flush() error { return c.inner.Flush() }

// CachedOutput is CachedInput's OutputScope counterpart.
type CachedOutput struct {
	inner OutputScope
	cache *lruCache[OutputMetric]
}

// NewCachedOutput wraps inner with an LRU of the given capacity.
func NewCachedOutput(inner OutputScope, capacity int) *CachedOutput {
	return &CachedOutput{inner: inner, cache: newLRUCache[OutputMetric](capacity)}
}

func (c *CachedOutput) NewMetric(name MetricName, kind Kind) OutputMetric {
	key := newMetricId(kind, name).Key()
	return c.cache.getOrCreate(key, func() OutputMetric {
		return c.inner.NewMetric(name, kind)
	})
}

func (c *CachedOutput) Flush() error { return c.inner.Flush() }
