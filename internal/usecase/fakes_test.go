package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jaennil/guide_helper/backend/offline/internal/repository/cache"
	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
)

var errUpstream = errors.New("upstream down")

type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	total   atomic.Int64
	fail    map[string]bool
	release chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls: make(map[string]int),
		fail:  make(map[string]bool),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	f.mu.Lock()
	f.calls[locator]++
	fail := f.fail[locator]
	release := f.release
	f.mu.Unlock()
	f.total.Add(1)

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fail {
		return nil, errUpstream
	}
	return []byte("bytes of " + locator), nil
}

func (f *fakeFetcher) callsFor(locator string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[locator]
}

// spyCache wraps a MapCache and can inject failures.
type spyCache struct {
	*cache.MapCache
	gets   atomic.Int64
	getErr error
	setErr error
}

func newSpyCache() *spyCache {
	return &spyCache{MapCache: cache.NewMapCache()}
}

func (c *spyCache) Get(ctx context.Context, k resource.Key) (cache.Entry, bool, error) {
	c.gets.Add(1)
	if c.getErr != nil {
		return cache.Entry{}, false, c.getErr
	}
	return c.MapCache.Get(ctx, k)
}

func (c *spyCache) Set(ctx context.Context, k resource.Key, v cache.Entry) error {
	if c.setErr != nil {
		return c.setErr
	}
	return c.MapCache.Set(ctx, k, v)
}
