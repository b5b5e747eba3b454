package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"labelprint/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrRenderService, "labelary", "render", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrRenderService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"labelary", "render", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network marker by default, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrNotFound, "shopify", "fetch", "no variant", nil), "NotFound"},
		{services.Wrap(services.ErrAuth, "shopify", "fetch", "401", nil), "AuthError"},
		{services.Wrap(services.ErrNetwork, "shopify", "fetch", "", errors.New("dial")), "NetworkError"},
		{services.Wrap(services.ErrTemplate, "label", "fill", "missing BARCODE", nil), "TemplateError"},
		{services.Wrap(services.ErrRenderService, "labelary", "render", "503", nil), "RenderServiceError"},
		{services.Wrap(services.ErrDispatch, "zebra", "send", "", services.ErrAuth), "DispatchError"},
		{services.Wrap(services.ErrDisabled, "printing", "dispatch", "", nil), "Disabled"},
		{services.Wrap(services.ErrConfiguration, "session", "lock", "", nil), "ConfigError"},
		{fmt.Errorf("outer: %w", services.ErrNotFound), "NotFound"},
		{errors.New("plain"), "Error"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id on empty context")
	}
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithSKU(ctx, "SKU-1")
	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id %q (%v)", id, ok)
	}
	if sku, ok := services.SKUFromContext(ctx); !ok || sku != "SKU-1" {
		t.Fatalf("unexpected sku %q (%v)", sku, ok)
	}
	if services.WithSKU(ctx, "") != ctx {
		t.Fatal("empty sku should leave the context unchanged")
	}
}
