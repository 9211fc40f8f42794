package cache

import (
	"context"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
)

type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

var _ ResourceCache = (*NoopCache)(nil)

func (c *NoopCache) Get(context.Context, resource.Key) (Entry, bool, error) {
	return Entry{}, false, nil
}

func (c *NoopCache) Set(context.Context, resource.Key, Entry) error {
	return nil
}

func (c *NoopCache) Clear(context.Context) error {
	return nil
}
