package memo

import "sync"

// Cell remembers the most recent value computed for a key.
//
// The zero value is ready to use. Cells are safe for concurrent use; compute
// runs under the cell lock so concurrent misses on the same cell compute once.
type Cell[K comparable, V any] struct {
	// Name labels the cell in metrics. Optional.
	Name string
	// Metrics receives hit/miss counts. Optional.
	Metrics *Metrics

	mu    sync.Mutex
	valid bool
	key   K
	val   V
}

// Get returns the cached value when key equals the last key, otherwise it
// calls compute, caches the result under key and returns it.
func (c *Cell[K, V]) Get(key K, compute func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.key == key {
		c.Metrics.hit(c.Name)
		return c.val
	}

	c.Metrics.miss(c.Name)
	c.val = compute()
	c.key = key
	c.valid = true
	return c.val
}
