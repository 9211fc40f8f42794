package cache

import (
	"container/list"
	"context"
	"sync"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
)

type lruEntry struct {
	key   resource.Key
	value Entry
}

// MemoryCache is an in-memory LRU bounded by entry count.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	items      map[resource.Key]*list.Element
	lruList    *list.List
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}

	return &MemoryCache{
		maxEntries: maxEntries,
		items:      make(map[resource.Key]*list.Element),
		lruList:    list.New(),
	}
}

var _ ResourceCache = (*MemoryCache)(nil)

func (c *MemoryCache) Get(_ context.Context, k resource.Key) (Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[k]
	if !ok {
		return Entry{}, false, nil
	}

	c.lruList.MoveToFront(elem)
	return elem.Value.(*lruEntry).value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, k resource.Key, v Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[k]; ok {
		elem.Value.(*lruEntry).value = v
		c.lruList.MoveToFront(elem)
		return nil
	}

	if c.lruList.Len() >= c.maxEntries {
		oldest := c.lruList.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(*lruEntry).key)
			c.lruList.Remove(oldest)
		}
	}

	c.items[k] = c.lruList.PushFront(&lruEntry{key: k, value: v})
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[resource.Key]*list.Element)
	c.lruList = list.New()
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lruList.Len()
}
