package resolver_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelprint/internal/product"
	"labelprint/internal/productcache"
	"labelprint/internal/resolver"
	"labelprint/internal/services"
)

type stubFetcher struct {
	records map[product.SKU]product.Record
	err     error
	calls   []product.SKU
}

func (f *stubFetcher) Fetch(_ context.Context, sku product.SKU) (product.Record, error) {
	f.calls = append(f.calls, sku)
	if f.err != nil {
		return product.Record{}, f.err
	}
	rec, ok := f.records[sku]
	if !ok {
		return product.Record{}, services.Wrap(services.ErrNotFound, "stub", "fetch", string(sku), nil)
	}
	return rec, nil
}

type failingStore struct {
	puts int
}

func (s *failingStore) Get(product.SKU) (product.Record, bool) { return product.Record{}, false }
func (s *failingStore) Put(product.SKU, product.Record) error {
	s.puts++
	return errors.New("disk full")
}

func record(sku, price string) product.Record {
	return product.NewRecord(product.SKU(sku), "Widget", decimal.RequireFromString(price), "111", "", nil, time.Now())
}

func TestResolveMissFetchesAndCaches(t *testing.T) {
	cache := productcache.New(t.TempDir(), nil)
	fetcher := &stubFetcher{records: map[product.SKU]product.Record{"SKU-1": record("SKU-1", "9.99")}}
	r := resolver.New(cache, fetcher, nil)

	res, err := r.Resolve(context.Background(), " SKU-1 ")
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Equal(t, "9.99", res.Record.PriceString())

	_, ok := cache.Get("SKU-1")
	assert.True(t, ok, "record should be cached after fetch")

	res, err = r.Resolve(context.Background(), "SKU-1")
	require.NoError(t, err)
	assert.True(t, res.CacheHit)
	assert.Len(t, fetcher.calls, 1, "cache hit must not fetch")
}

func TestResolveFetchFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cache := productcache.New(dir, nil)
	r := resolver.New(cache, &stubFetcher{}, nil)

	_, err := r.Resolve(context.Background(), "SKU-BAD")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrNotFound)

	entries, err := cache.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoFileExists(t, filepath.Join(dir, "SKU-BAD.json"))
}

func TestResolveErrorsPassThroughUnchanged(t *testing.T) {
	authErr := services.Wrap(services.ErrAuth, "shopify", "fetch", "http 401", nil)
	r := resolver.New(productcache.New(t.TempDir(), nil), &stubFetcher{err: authErr}, nil)

	_, err := r.Resolve(context.Background(), "SKU-1")
	assert.Same(t, authErr, err)
}

func TestResolveEmptySKUIsNotFound(t *testing.T) {
	fetcher := &stubFetcher{}
	r := resolver.New(productcache.New(t.TempDir(), nil), fetcher, nil)

	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Empty(t, fetcher.calls)
}

func TestResolvePutFailureDoesNotFailItem(t *testing.T) {
	store := &failingStore{}
	fetcher := &stubFetcher{records: map[product.SKU]product.Record{"SKU-1": record("SKU-1", "1.00")}}
	r := resolver.New(store, fetcher, nil)

	res, err := r.Resolve(context.Background(), "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, product.SKU("SKU-1"), res.Record.SKU)
	assert.Equal(t, 1, store.puts)
}

func TestResolveRefreshOverwrites(t *testing.T) {
	cache := productcache.New(t.TempDir(), nil)
	require.NoError(t, cache.Put("SKU-1", record("SKU-1", "1.00")))

	fetcher := &stubFetcher{records: map[product.SKU]product.Record{"SKU-1": record("SKU-1", "2.00")}}
	r := resolver.New(cache, fetcher, nil)

	res, err := r.Resolve(context.Background(), "SKU-1", resolver.WithRefresh(true))
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Equal(t, "2.00", res.Record.PriceString())

	cached, ok := cache.Get("SKU-1")
	require.True(t, ok)
	assert.Equal(t, "2.00", cached.PriceString())
}
