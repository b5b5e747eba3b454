package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"labelprint/internal/product"
	"labelprint/internal/productcache"
	"labelprint/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune the product cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func (c *commandContext) productCache() (*productcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return productcache.New(cfg.Paths.CacheDir, logger), nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.productCache()
			if err != nil {
				return err
			}
			entries, err := cache.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "Cache is empty (%s)\n", cache.Root())
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				title, price := "(unreadable)", ""
				if rec, ok := cache.Get(e.SKU); ok {
					title, price = rec.Title, rec.PriceString()
				}
				rows = append(rows, []string{
					e.SKU.String(),
					title,
					price,
					strconv.FormatInt(e.Size, 10),
					e.Modified.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"SKU", "Title", "Price", "Bytes", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <sku>",
		Short: "Print the cached record for a SKU",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.productCache()
			if err != nil {
				return err
			}
			sku := product.NormalizeSKU(args[0])
			data, err := os.ReadFile(cache.Path(sku))
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("no cache entry for %s", sku)
				}
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <sku>...",
		Short: "Delete cache entries so the next lookup re-fetches them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.productCache()
			if err != nil {
				return err
			}
			lock, err := cache.Lock()
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			out := cmd.OutOrStdout()
			var missing int
			for _, arg := range args {
				sku := product.NormalizeSKU(arg)
				if err := cache.Remove(sku); err != nil {
					if errors.Is(err, services.ErrNotFound) {
						fmt.Fprintf(out, "%s: not cached\n", sku)
						missing++
						continue
					}
					return err
				}
				fmt.Fprintf(out, "%s: removed\n", sku)
			}
			if missing == len(args) {
				return errors.New("no cache entries removed")
			}
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.productCache()
			if err != nil {
				return err
			}
			lock, err := cache.Lock()
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			n, err := cache.Clear()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", n)
			return nil
		},
	}
}
