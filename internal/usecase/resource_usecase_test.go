package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jaennil/guide_helper/backend/offline/internal/repository/cache"
	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPattern = "https://tiles.example/{z}/{x}/{y}{ratio}.png"

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestUseCase(c cache.ResourceCache, f Fetcher, opts Options) *ResourceUseCase {
	uc := NewResourceUseCase(c, f, logger.NewNop(), opts)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func mustTile(t *testing.T, ratio float64, x, y, z int) resource.Descriptor {
	t.Helper()
	d, err := resource.NewTile(testPattern, ratio, x, y, z)
	require.NoError(t, err)
	return d
}

func TestGetMissThenHit(t *testing.T) {
	ctx := context.Background()
	c := newSpyCache()
	f := newFakeFetcher()
	uc := newTestUseCase(c, f, Options{Expiry: time.Hour})

	d := mustTile(t, 2, 3, 5, 4)

	data, src, err := uc.Get(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)
	assert.Equal(t, []byte("bytes of https://tiles.example/4/3/5@2x.png"), data)

	e, ok, err := c.MapCache.Get(ctx, d.CanonicalKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fixedNow.Add(time.Hour), e.Expires)

	data, src, err = uc.Get(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, []byte("bytes of https://tiles.example/4/3/5@2x.png"), data)
	assert.Equal(t, 1, f.callsFor(d.Resolve()))
}

func TestGetRefetchesExpiredEntry(t *testing.T) {
	ctx := context.Background()
	c := newSpyCache()
	f := newFakeFetcher()
	uc := newTestUseCase(c, f, Options{})

	d := mustTile(t, 1, 0, 0, 0)
	require.NoError(t, c.Set(ctx, d.CanonicalKey(), cache.Entry{Data: []byte("stale"), Expires: fixedNow.Add(-time.Second)}))

	data, src, err := uc.Get(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)
	assert.Equal(t, []byte("bytes of https://tiles.example/0/0/0.png"), data)

	e, _, _ := c.MapCache.Get(ctx, d.CanonicalKey())
	assert.True(t, e.Expires.IsZero(), "zero expiry option stores entries that never expire")
}

func TestGetFetchFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	c := newSpyCache()
	f := newFakeFetcher()
	d := mustTile(t, 1, 1, 1, 1)
	f.fail[d.Resolve()] = true

	uc := newTestUseCase(c, f, Options{})

	_, _, err := uc.Get(ctx, d)
	require.ErrorIs(t, err, errUpstream)

	_, ok, _ := c.MapCache.Get(ctx, d.CanonicalKey())
	assert.False(t, ok)
}

func TestGetStoreFailureStillReturnsData(t *testing.T) {
	c := newSpyCache()
	c.setErr = errors.New("disk full")
	uc := newTestUseCase(c, newFakeFetcher(), Options{})

	data, src, err := uc.Get(context.Background(), mustTile(t, 1, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)
	assert.NotEmpty(t, data)
}

func TestGetCacheErrorFallsBackToUpstream(t *testing.T) {
	c := newSpyCache()
	c.getErr = errors.New("database is locked")
	f := newFakeFetcher()
	uc := newTestUseCase(c, f, Options{})

	d := mustTile(t, 1, 0, 0, 0)
	_, src, err := uc.Get(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)
	assert.Equal(t, 1, f.callsFor(d.Resolve()))
}

func TestGetCoalescesConcurrentMisses(t *testing.T) {
	const callers = 8

	c := newSpyCache()
	f := newFakeFetcher()
	f.release = make(chan struct{})
	uc := newTestUseCase(c, f, Options{})

	d := mustTile(t, 2, 3, 5, 4)

	var wg sync.WaitGroup
	results := make([][]byte, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _, errs[i] = uc.Get(context.Background(), d)
		}()
	}

	require.Eventually(t, func() bool { return c.gets.Load() == callers }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.Equal(t, 1, f.callsFor(d.Resolve()))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, []byte("bytes of https://tiles.example/4/3/5@2x.png"), results[i])
	}
}

func TestGetCallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	c := newSpyCache()
	f := newFakeFetcher()
	f.release = make(chan struct{})
	uc := newTestUseCase(c, f, Options{})

	d := mustTile(t, 1, 0, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := uc.Get(ctx, d)
		done <- err
	}()

	require.Eventually(t, func() bool { return f.total.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(f.release)
	require.Eventually(t, func() bool {
		_, ok, _ := c.MapCache.Get(context.Background(), d.CanonicalKey())
		return ok
	}, time.Second, time.Millisecond)
}

func TestPutTileAndPutURL(t *testing.T) {
	ctx := context.Background()
	c := newSpyCache()
	f := newFakeFetcher()
	uc := newTestUseCase(c, f, Options{Expiry: 365 * 24 * time.Hour})

	d := mustTile(t, 2, 3, 5, 4)
	require.NoError(t, uc.PutTile(ctx, d, []byte("offline tile")))

	data, src, err := uc.Get(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, []byte("offline tile"), data)
	assert.Zero(t, f.total.Load())

	require.NoError(t, uc.PutURL(ctx, "https://tiles.example/style.json", []byte("{}")))
	e, ok, err := c.MapCache.Get(ctx, resource.URLKey("https://tiles.example/style.json"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("{}"), e.Data)
	assert.Equal(t, fixedNow.Add(365*24*time.Hour), e.Expires)

	assert.ErrorIs(t, uc.PutURL(ctx, "", []byte("x")), ErrEmptyURL)

	require.NoError(t, uc.Clear(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestZeroDescriptorIsRejected(t *testing.T) {
	ctx := context.Background()
	c := newSpyCache()
	f := newFakeFetcher()
	uc := newTestUseCase(c, f, Options{})

	_, _, err := uc.Get(ctx, resource.Descriptor{})
	assert.ErrorIs(t, err, resource.ErrUnresolvableTemplate)

	err = uc.PutTile(ctx, resource.Descriptor{}, []byte("data"))
	assert.ErrorIs(t, err, resource.ErrUnresolvableTemplate)

	assert.Zero(t, f.total.Load())
	assert.Zero(t, c.gets.Load())
	assert.Equal(t, 0, c.Len())
}
