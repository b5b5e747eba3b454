package preflight

import (
	"context"

	"labelprint/internal/config"
	"labelprint/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Pinger verifies connectivity and credentials for a remote API.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunAll executes all applicable preflight checks for the given config.
// shop may be nil to skip the Shopify credential check.
func RunAll(ctx context.Context, cfg *config.Config, shop Pinger) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckTemplate(cfg.Label.TemplatePath),
	}

	if cfg.EnableNetworkPrint {
		for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
			results = append(results, fromStatus(status))
		}
	}
	if cfg.EnableCloudPrint {
		results = append(results, CheckCloudPrint(cfg))
	}
	if cfg.Archive.Enabled {
		results = append(results, CheckArchive(cfg))
	}
	if shop != nil {
		results = append(results, CheckShopify(ctx, shop))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

func fromStatus(status deps.Status) Result {
	return Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		Detail:   status.Detail,
	}
}
