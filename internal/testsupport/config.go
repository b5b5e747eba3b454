package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labelprint/internal/config"
)

// SampleTemplate is a small ZPL template that uses the standard title, price,
// and barcode fields.
const SampleTemplate = `^XA
^CF0,24
^FO10,10^FD$PRODUCT_TITLE_L1^FS
^FO10,40^FD$PRODUCT_TITLE_L2^FS
^FO10,80^FD$PRICE_STR^FS
^FO200,80^FD$PRICE_TYPE^FS
^FO10,120^BY2^BCN,50,Y,N,N^FD$BARCODE^FS
^FO10,200^FD$SKU^FS
^XZ
`

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are filled with placeholders and printing stays disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.ShopifyAPIKey = "test-key"
	cfgVal.ShopifyAPISecret = "test-secret"
	cfgVal.Shopify.BaseURL = "http://127.0.0.1:0"
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.OutputDir = filepath.Join(base, "labels")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Label.TemplatePath = filepath.Join(base, "label.zpl")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithShopifyURL points the Shopify client at a test server.
func WithShopifyURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Shopify.BaseURL = strings.TrimRight(url, "/")
	}
}

// WithRenderURL points the Labelary client at a test server.
func WithRenderURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.BaseURL = strings.TrimRight(url, "/")
	}
}

// WithTemplate writes text as the label template.
func WithTemplate(text string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.WriteFile(b.cfg.Label.TemplatePath, []byte(text), 0o644); err != nil {
			b.t.Fatalf("write template: %v", err)
		}
	}
}

// WithNetworkPrinter enables local spooler printing to the named queue.
func WithNetworkPrinter(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.EnableNetworkPrint = true
		b.cfg.NetworkPrinterName = name
	}
}

// WithCloudPrinter enables Zebra cloud printing against url.
func WithCloudPrinter(url, serial string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.EnableCloudPrint = true
		b.cfg.ZebraAPIKey = "zebra-key"
		b.cfg.ZebraAPISecret = "zebra-tenant"
		b.cfg.Zebra.BaseURL = url
		b.cfg.Zebra.PrinterSerial = serial
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. Each stub appends its arguments to <name>.log in the
// stub directory; see StubInvocations. If names is empty, lpr is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"lpr"}
		}
		binDir := stubDir(b.baseDir)
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(binDir, name)
			logPath := filepath.Join(binDir, name+".log")
			script := []byte("#!/bin/sh\nprintf '%s\\n' \"$*\" >> '" + logPath + "'\nexit 0\n")
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// StubInvocations returns the argument lines recorded by a stubbed binary.
func StubInvocations(t testing.TB, cfg *config.Config, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(stubDir(BaseDir(cfg)), name+".log"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read stub log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

func stubDir(base string) string {
	return filepath.Join(base, "bin")
}
