package layout

import (
	"fmt"

	"github.com/huddle-app/huddle/internal/event"
)

const defaultCacheSize = 16

// Cache memoizes pack results per visible window. Entries are keyed by the
// window bounds and the event-set version reported by the store, so a stale
// entry can never be served after a mutation: the version moves, the key
// misses. Eviction is oldest-first at a fixed capacity.
type Cache struct {
	max     int
	entries map[string][]Slot
	order   []string
}

// NewCache creates a cache holding at most size windows. A non-positive
// size falls back to the default.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &Cache{
		max:     size,
		entries: make(map[string][]Slot),
	}
}

func cacheKey(w event.Window, version uint64) string {
	return fmt.Sprintf("%d|%d|%d|%d",
		w.Start.UnixNano(), w.End.UnixNano(), w.Granularity, version)
}

// Get returns the memoized slots for the window and version, if present.
func (c *Cache) Get(w event.Window, version uint64) ([]Slot, bool) {
	slots, ok := c.entries[cacheKey(w, version)]
	return slots, ok
}

// Put stores the pack result for the window and version, evicting the
// oldest entry when full.
func (c *Cache) Put(w event.Window, version uint64, slots []Slot) {
	key := cacheKey(w, version)
	if _, exists := c.entries[key]; exists {
		c.entries[key] = slots
		return
	}
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = slots
	c.order = append(c.order, key)
}

// Invalidate drops every entry. Useful when the caller cannot produce a
// new version number, e.g. after a bulk import.
func (c *Cache) Invalidate() {
	c.entries = make(map[string][]Slot)
	c.order = nil
}

// Len returns the number of cached windows.
func (c *Cache) Len() int {
	return len(c.entries)
}
