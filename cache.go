package faresweep

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes fetch results for the lifetime of the process. For any key
// the fetch function runs at most once: stored responses are returned
// without touching the network, and duplicate in-flight fetches for the same
// key are collapsed into a single call. Failed fetches are not stored, so a
// later call for the same key may try again.
//
// There is no eviction and no TTL; a sweep is bounded, and the whole point
// is to never ask the upstream API the same question twice.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Response
	group   singleflight.Group
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Response)}
}

func (c *Cache) GetOrFetch(key string, fetch func() (Response, error)) (Response, error) {
	c.mu.RLock()
	resp, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return resp, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have stored the entry between the fast
		// path and joining the flight.
		c.mu.RLock()
		resp, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return resp, nil
		}

		resp, err := fetch()
		if err != nil {
			return Response{}, err
		}

		c.mu.Lock()
		c.entries[key] = resp
		c.mu.Unlock()

		return resp, nil
	})
	if err != nil {
		return Response{}, err
	}

	return v.(Response), nil
}

// Len reports the number of stored responses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
