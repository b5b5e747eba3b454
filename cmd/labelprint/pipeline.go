package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"labelprint/internal/archive"
	"labelprint/internal/config"
	"labelprint/internal/history"
	"labelprint/internal/label"
	"labelprint/internal/metrics"
	"labelprint/internal/preflight"
	"labelprint/internal/printing"
	"labelprint/internal/productcache"
	"labelprint/internal/render"
	"labelprint/internal/resolver"
	"labelprint/internal/services/labelary"
	"labelprint/internal/services/shopify"
	"labelprint/internal/session"
)

// pipeline holds the components a session run needs, built once per invocation.
type pipeline struct {
	cfg     *config.Config
	cache   *productcache.Cache
	shop    *shopify.Client
	history *history.Store
	deps    session.Deps
}

func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	tpl, err := label.LoadTemplate(cfg.Label.TemplatePath)
	if err != nil {
		return nil, err
	}

	cache := productcache.New(cfg.Paths.CacheDir, logger)
	shop := shopify.NewClient(shopify.Config{
		BaseURL:        cfg.Shopify.BaseURL,
		APIVersion:     cfg.Shopify.APIVersion,
		APIKey:         cfg.ShopifyAPIKey,
		APISecret:      cfg.ShopifyAPISecret,
		TimeoutSeconds: cfg.Shopify.TimeoutSeconds,
	})
	rasterizer := labelary.NewClient(labelary.Config{
		BaseURL:        cfg.Render.BaseURL,
		DPMM:           cfg.Render.DPMM,
		WidthInches:    cfg.Label.WidthInches,
		HeightInches:   cfg.Label.HeightInches,
		TimeoutSeconds: cfg.Render.TimeoutSeconds,
	})
	renderer := render.New(render.Config{
		OutputDir: cfg.Paths.OutputDir,
		Format:    cfg.Render.Format,
		Layout:    label.Layout{LineMaxChars: cfg.Label.LineMaxChars},
		SheetSize: cfg.Label.SheetSize,
	}, rasterizer, logger)

	archiver, err := archive.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	return &pipeline{
		cfg:     cfg,
		cache:   cache,
		shop:    shop,
		history: store,
		deps: session.Deps{
			Resolver:   resolver.New(cache, shop, logger),
			Renderer:   renderer,
			Template:   tpl,
			Dispatcher: printing.NewDispatcher(cfg, logger),
			History:    store,
			Archive:    archiver,
			Metrics:    metrics.NewLatencyTracker(metrics.DefaultRelativeAccuracy),
			Logger:     logger,
		},
	}, nil
}

func (p *pipeline) Close() error {
	if p == nil || p.history == nil {
		return nil
	}
	return p.history.Close()
}

// runPreflight prints every check that did not pass and fails on required ones.
func runPreflight(ctx context.Context, cfg *config.Config, shop preflight.Pinger, out io.Writer) error {
	results := preflight.RunAll(ctx, cfg, shop)
	var rows [][]string
	for _, r := range results {
		if r.Passed {
			continue
		}
		level := "FAIL"
		if r.Optional {
			level = "WARN"
		}
		rows = append(rows, []string{level, r.Name, r.Detail})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Status", "Check", "Detail"}, rows, nil))
	}

	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		names = append(names, r.Name)
	}
	return errors.New("preflight failed: " + strings.Join(names, ", "))
}
