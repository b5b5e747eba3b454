package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"labelprint/internal/services"
	"labelprint/internal/testsupport"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckTemplate(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTemplate(testsupport.SampleTemplate))
	if result := CheckTemplate(cfg.Label.TemplatePath); !result.Passed {
		t.Fatalf("expected template check to pass: %s", result.Detail)
	}
	if result := CheckTemplate(filepath.Join(t.TempDir(), "missing.zpl")); result.Passed {
		t.Fatal("expected missing template to fail")
	}
}

func TestCheckShopifyIsAdvisory(t *testing.T) {
	result := CheckShopify(context.Background(), stubPinger{err: services.Wrap(services.ErrAuth, "shopify", "ping", "http 401", nil)})
	if result.Passed || !result.Optional {
		t.Fatalf("expected optional failure, got %+v", result)
	}
	if result.Detail != "auth failed (check shopify_api_key and shopify_api_secret)" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
	if result := CheckShopify(context.Background(), stubPinger{}); !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTemplate(testsupport.SampleTemplate))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg, nil)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_RequiresSpoolerWhenNetworkPrintEnabled(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithTemplate(testsupport.SampleTemplate),
		testsupport.WithNetworkPrinter("Zebra"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", t.TempDir())

	failed := Failed(RunAll(context.Background(), cfg, nil))
	if len(failed) != 1 || failed[0].Name != "lpr" {
		t.Fatalf("expected lpr failure, got %+v", failed)
	}
}

func TestRunAll_StubbedSpoolerPasses(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithTemplate(testsupport.SampleTemplate),
		testsupport.WithNetworkPrinter("Zebra"),
		testsupport.WithStubbedBinaries("lpr"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	if failed := Failed(RunAll(context.Background(), cfg, stubPinger{})); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_CloudPrintMissingSerial(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithTemplate(testsupport.SampleTemplate),
		testsupport.WithCloudPrinter("http://127.0.0.1", ""))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	failed := Failed(RunAll(context.Background(), cfg, nil))
	if len(failed) != 1 || failed[0].Detail != "missing zebra.printer_serial" {
		t.Fatalf("expected serial failure, got %+v", failed)
	}
}
