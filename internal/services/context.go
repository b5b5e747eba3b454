package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	skuKey   contextKey = "sku"
)

// WithRunID annotates context with the session run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSKU annotates context with the SKU currently moving through the pipeline.
func WithSKU(ctx context.Context, sku string) context.Context {
	if sku == "" {
		return ctx
	}
	return context.WithValue(ctx, skuKey, sku)
}

// SKUFromContext returns the SKU if present.
func SKUFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(skuKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
