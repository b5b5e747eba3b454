package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"labelprint/internal/config"
	"labelprint/internal/label"
	"labelprint/internal/services"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTemplate verifies the label template loads and references at least one field.
func CheckTemplate(path string) Result {
	const name = "Label template"

	tpl, err := label.LoadTemplate(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	fields := tpl.Placeholders()
	if len(fields) == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (warning: no placeholders)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, strings.Join(fields, ", "))}
}

// CheckCloudPrint verifies that cloud print credentials are present.
func CheckCloudPrint(cfg *config.Config) Result {
	const name = "Zebra cloud print"

	switch {
	case strings.TrimSpace(cfg.ZebraAPIKey) == "":
		return Result{Name: name, Detail: "missing zebra_api_key"}
	case strings.TrimSpace(cfg.ZebraAPISecret) == "":
		return Result{Name: name, Detail: "missing zebra_api_secret"}
	case strings.TrimSpace(cfg.Zebra.PrinterSerial) == "":
		return Result{Name: name, Detail: "missing zebra.printer_serial"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("printer %s", cfg.Zebra.PrinterSerial)}
}

// CheckArchive verifies that an archive bucket is configured. Upload failures
// never stop a label, so the check is advisory.
func CheckArchive(cfg *config.Config) Result {
	const name = "Label archive"

	if strings.TrimSpace(cfg.Archive.Bucket) == "" {
		return Result{Name: name, Optional: true, Detail: "missing archive.bucket"}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("s3://%s/%s", cfg.Archive.Bucket, cfg.Archive.Prefix)}
}

// CheckShopify verifies the Shopify credentials with a single query.
func CheckShopify(ctx context.Context, shop Pinger) Result {
	const name = "Shopify"

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := shop.Ping(checkCtx); err != nil {
		return Result{Name: name, Optional: true, Detail: summarizeShopifyError(err)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: "API reachable"}
}

func summarizeShopifyError(err error) string {
	if errors.Is(err, services.ErrAuth) {
		return "auth failed (check shopify_api_key and shopify_api_secret)"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (Shopify API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (Shopify API unreachable)"
	}
	return err.Error()
}
