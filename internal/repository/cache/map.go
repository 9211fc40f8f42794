package cache

import (
	"context"
	"sync"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
)

type MapCache struct {
	m *TypedSyncMap
}

type TypedSyncMap struct {
	m sync.Map
}

func (c *TypedSyncMap) Load(k resource.Key) (Entry, bool) {
	v, exists := c.m.Load(k)
	if !exists {
		return Entry{}, false
	}
	return v.(Entry), exists
}

func (c *TypedSyncMap) Store(k resource.Key, v Entry) {
	c.m.Store(k, v)
}

func (c *TypedSyncMap) Clear() {
	c.m.Clear()
}

func (c *TypedSyncMap) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func NewMapCache() *MapCache {
	return &MapCache{
		m: &TypedSyncMap{},
	}
}

var _ ResourceCache = (*MapCache)(nil)

func (c *MapCache) Get(_ context.Context, k resource.Key) (Entry, bool, error) {
	v, exists := c.m.Load(k)
	return v, exists, nil
}

func (c *MapCache) Set(_ context.Context, k resource.Key, v Entry) error {
	c.m.Store(k, v)
	return nil
}

func (c *MapCache) Clear(_ context.Context) error {
	c.m.Clear()
	return nil
}

func (c *MapCache) Len() int {
	return c.m.Len()
}
