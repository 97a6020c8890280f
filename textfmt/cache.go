package textfmt

// Cache is a bounded map that evicts the oldest inserted key once it holds more than its
// capacity. Lookups do not refresh an entry. It is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	capacity int
	entries  map[K]V
	order    []K // ring of keys in insertion order
	head     int
}

// NewCache returns a cache holding at most capacity entries. A capacity below one disables
// caching: Put is a no-op and Get always misses.
func NewCache[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache[K, V]{
		capacity: capacity,
		entries:  make(map[K]V, min(capacity, 64)),
	}
}

// Get returns the value stored for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put stores value for key. Replacing the value of a present key keeps its position.
func (c *Cache[K, V]) Put(key K, value V) {
	if c.capacity == 0 {
		return
	}
	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	if len(c.order) < c.capacity {
		c.order = append(c.order, key)
	} else {
		delete(c.entries, c.order[c.head])
		c.order[c.head] = key
		c.head = (c.head + 1) % c.capacity
	}
	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}
