package schema

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/toyz/modelcore/pkg/model/types"
)

// Extractor builds the schema of a model type
type Extractor func(types.ModelType) (*Schema, error)

// Cache holds schemas keyed by model type. Reads take a shared lock and
// concurrent misses for the same type run the extractor once.
type Cache struct {
	mu      sync.RWMutex
	schemas map[types.ModelType]*Schema
	evicted uint64 // bumped by Evict; extractions started before a bump are not stored
	group   singleflight.Group
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{schemas: make(map[types.ModelType]*Schema)}
}

// Get returns the cached schema for t
func (c *Cache) Get(t types.ModelType) (*Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.schemas[t]
	return s, ok
}

// GetOrCreate returns the cached schema for t, running extract on a miss.
// Extraction errors are returned and nothing is cached.
func (c *Cache) GetOrCreate(t types.ModelType, extract Extractor) (*Schema, error) {
	if s, ok := c.Get(t); ok {
		return s, nil
	}

	v, err, _ := c.group.Do(t.DisplayName(), func() (interface{}, error) {
		c.mu.RLock()
		s, ok := c.schemas[t]
		generation := c.evicted
		c.mu.RUnlock()
		if ok {
			return s, nil
		}

		s, err := extract(t)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.evicted == generation {
			c.schemas[t] = s
		}
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	s := v.(*Schema)
	if s.Type() != t {
		// distinct types with the same display name, e.g. function-local types
		return extract(t)
	}
	return s, nil
}

// Evict drops the schema for t, typically after a read reported a stale
// reference. An extraction in flight when Evict runs still answers its
// callers but is not cached. It reports whether an entry was removed.
func (c *Cache) Evict(t types.ModelType) bool {
	c.mu.Lock()
	_, ok := c.schemas[t]
	delete(c.schemas, t)
	c.evicted++
	c.mu.Unlock()

	c.group.Forget(t.DisplayName())
	return ok
}

// Len returns the number of cached schemas
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.schemas)
}
