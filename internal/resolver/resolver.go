// Package resolver turns a SKU into a product record, reading through the
// product cache before asking the commerce API.
package resolver

import (
	"context"
	"log/slog"

	"labelprint/internal/logging"
	"labelprint/internal/product"
	"labelprint/internal/services"
)

// Fetcher retrieves a product record from the authoritative source.
type Fetcher interface {
	Fetch(ctx context.Context, sku product.SKU) (product.Record, error)
}

// Store is the cache consulted before fetching.
type Store interface {
	Get(sku product.SKU) (product.Record, bool)
	Put(sku product.SKU, rec product.Record) error
}

// Result carries the resolved record and where it came from.
type Result struct {
	Record   product.Record
	CacheHit bool
}

// Resolver implements read-through resolution. Failed lookups are never cached.
type Resolver struct {
	store   Store
	fetcher Fetcher
	logger  *slog.Logger
}

// New constructs a resolver.
func New(store Store, fetcher Fetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "resolver"),
	}
}

// ResolveOption adjusts a single Resolve call.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	refresh bool
}

// WithRefresh skips the cache read and overwrites the entry when the fetch succeeds.
func WithRefresh(refresh bool) ResolveOption {
	return func(o *resolveOptions) { o.refresh = refresh }
}

// Resolve returns the record for sku.
func (r *Resolver) Resolve(ctx context.Context, raw product.SKU, opts ...ResolveOption) (Result, error) {
	var options resolveOptions
	for _, opt := range opts {
		opt(&options)
	}

	sku := product.NormalizeSKU(string(raw))
	if !sku.Valid() {
		return Result{}, services.Wrap(services.ErrNotFound, "resolver", "resolve", "invalid sku", nil)
	}
	logger := logging.WithContext(services.WithSKU(ctx, string(sku)), r.logger)

	if !options.refresh {
		if rec, ok := r.store.Get(sku); ok {
			logger.Debug("resolved from cache", logging.String(logging.FieldEventType, "resolve_cache_hit"))
			return Result{Record: rec, CacheHit: true}, nil
		}
	}

	rec, err := r.fetcher.Fetch(ctx, sku)
	if err != nil {
		return Result{}, err
	}

	if err := r.store.Put(sku, rec); err != nil {
		logging.WarnWithContext(logger, "failed to cache product record", "resolve_cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the cache directory"),
			logging.String(logging.FieldImpact, "product will be fetched again next time"))
	}
	logger.Debug("resolved from shopify",
		logging.String(logging.FieldEventType, "resolve_fetched"),
		logging.Bool("refresh", options.refresh))
	return Result{Record: rec}, nil
}
