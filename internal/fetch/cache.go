package fetch

import (
	"fmt"
	"sync"

	"github.com/Alias1177/MarketMetrics/models"
)

// cache holds fetched series for the lifetime of the process, keyed by
// (source, identifier, range). Nothing is persisted; a new run starts
// cold.
type cache struct {
	mu      sync.RWMutex
	entries map[string]*models.Series
}

func newCache() *cache {
	return &cache{entries: make(map[string]*models.Series)}
}

func cacheKey(source models.Source, id string, r models.DateRange) string {
	return fmt.Sprintf("%s|%s|%s", source, id, r)
}

// get returns a copy of the cached series, so callers can reshape it
// freely.
func (c *cache) get(key string) (*models.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

func (c *cache) set(key string, s *models.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = s.Clone()
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
