package condition

import "sync"

// Cache memoizes compiled predicates by condition text. A single Cache is
// shared by every run on a rule set and is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Predicate
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Predicate)}
}

// Compile returns the cached predicate for text, compiling it on first use.
// Failed compilations are not cached.
func (c *Cache) Compile(text string) (Predicate, error) {
	c.mu.RLock()
	pred, ok := c.entries[text]
	c.mu.RUnlock()
	if ok {
		return pred, nil
	}

	pred, err := Compile(text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[text]; ok {
		return existing, nil
	}
	c.entries[text] = pred
	return pred, nil
}

// Len returns the number of cached predicates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
