package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jaennil/guide_helper/backend/offline/internal/repository/cache"
	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
	"github.com/jaennil/guide_helper/backend/offline/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

var ErrEmptyURL = errors.New("empty resource url")

var errZeroDescriptor = fmt.Errorf("%w: descriptor was not constructed", resource.ErrUnresolvableTemplate)

type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// RequestState is the lifecycle of one resource request:
// Requested -> CacheHit | CacheMiss -> (Fetching -> Fetched | FetchFailed) -> Stored.
type RequestState string

const (
	StateRequested   RequestState = "requested"
	StateCacheHit    RequestState = "cache_hit"
	StateCacheMiss   RequestState = "cache_miss"
	StateFetching    RequestState = "fetching"
	StateFetched     RequestState = "fetched"
	StateFetchFailed RequestState = "fetch_failed"
	StateStored      RequestState = "stored"
)

type Options struct {
	// Expiry is how long stored resources stay fresh; 0 means forever.
	Expiry time.Duration
	// TileCountLimit caps the tiles of one seeded region; 0 means unlimited.
	TileCountLimit int
	SeedWorkers    int
}

type ResourceUseCase struct {
	cache   cache.ResourceCache
	fetcher Fetcher
	logger  logger.Logger
	opts    Options
	now     func() time.Time

	// inflight keeps at most one fetch per canonical key
	inflight singleflight.Group
}

func NewResourceUseCase(c cache.ResourceCache, f Fetcher, l logger.Logger, opts Options) *ResourceUseCase {
	if opts.SeedWorkers <= 0 {
		opts.SeedWorkers = 1
	}

	return &ResourceUseCase{
		cache:   c,
		fetcher: f,
		logger:  l,
		opts:    opts,
		now:     time.Now,
	}
}

// Get returns the resource bytes from the cache, fetching and storing them on
// a miss. Concurrent misses for the same key share a single fetch.
func (uc *ResourceUseCase) Get(ctx context.Context, d resource.Descriptor) ([]byte, Source, error) {
	if d.IsZero() {
		return nil, "", errZeroDescriptor
	}

	key := d.CanonicalKey()
	uc.logger.Debug("resource request", "state", StateRequested, "key", key.String())

	e, exists, err := uc.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		uc.logger.Warn("cache lookup failed, will fetch from upstream", "key", key.String(), "error", err)
	}

	if exists && !e.Expired(uc.now()) {
		metrics.CacheHits.Inc()
		uc.logger.Debug("resource request", "state", StateCacheHit, "key", key.String(), "size", len(e.Data))
		return e.Data, SourceCache, nil
	}

	metrics.CacheMisses.Inc()
	uc.logger.Debug("resource request", "state", StateCacheMiss, "key", key.String(), "expired", exists)

	// the shared fetch must outlive any single caller's cancellation
	fetchCtx := context.WithoutCancel(ctx)
	ch := uc.inflight.DoChan(key.Digest(), func() (any, error) {
		return uc.fetchAndStore(fetchCtx, d, key)
	})

	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.CoalescedRequests.Inc()
		}
		if res.Err != nil {
			return nil, "", res.Err
		}
		return res.Val.([]byte), SourceNetwork, nil
	}
}

func (uc *ResourceUseCase) fetchAndStore(ctx context.Context, d resource.Descriptor, key resource.Key) ([]byte, error) {
	locator := d.Resolve()
	uc.logger.Debug("resource request", "state", StateFetching, "key", key.String(), "url", locator)

	data, err := uc.fetcher.Fetch(ctx, locator)
	if err != nil {
		uc.logger.Warn("resource request", "state", StateFetchFailed, "key", key.String(), "url", locator, "error", err)
		return nil, err
	}
	uc.logger.Debug("resource request", "state", StateFetched, "key", key.String(), "size", len(data))

	if err := uc.store(ctx, key, data); err != nil {
		// the caller still gets the bytes; the next request retries the store
		uc.logger.Warn("failed to store fetched resource", "key", key.String(), "error", err)
	}

	return data, nil
}

func (uc *ResourceUseCase) store(ctx context.Context, key resource.Key, data []byte) error {
	e := cache.Entry{Data: data}
	if uc.opts.Expiry > 0 {
		e.Expires = uc.now().Add(uc.opts.Expiry)
	}

	if err := uc.cache.Set(ctx, key, e); err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		return err
	}

	metrics.CacheStores.Inc()
	uc.logger.Debug("resource request", "state", StateStored, "key", key.String(), "size", len(data))
	return nil
}

// PutTile stores bytes for a tile that was obtained out of band.
func (uc *ResourceUseCase) PutTile(ctx context.Context, d resource.Descriptor, data []byte) error {
	if d.IsZero() {
		return errZeroDescriptor
	}

	key := d.CanonicalKey()
	if err := uc.store(ctx, key, data); err != nil {
		uc.logger.Error("failed to put tile", "key", key.String(), "error", err)
		return err
	}

	uc.logger.Info("put tile", "key", key.String(), "size", len(data))
	return nil
}

// PutURL stores bytes for a resource addressed by a plain URL.
func (uc *ResourceUseCase) PutURL(ctx context.Context, url string, data []byte) error {
	if url == "" {
		return ErrEmptyURL
	}

	key := resource.URLKey(url)
	if err := uc.store(ctx, key, data); err != nil {
		uc.logger.Error("failed to put resource", "url", url, "error", err)
		return err
	}

	uc.logger.Info("put resource", "url", url, "size", len(data))
	return nil
}

func (uc *ResourceUseCase) Clear(ctx context.Context) error {
	if err := uc.cache.Clear(ctx); err != nil {
		metrics.CacheErrors.WithLabelValues("clear").Inc()
		uc.logger.Error("failed to clear cache", "error", err)
		return err
	}

	uc.logger.Info("cache cleared")
	return nil
}
