package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"labelprint/internal/services"
)

func variantPayload(sku, price string) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"productVariants": map[string]any{
				"edges": []any{
					map[string]any{
						"node": map[string]any{
							"id":          "gid://shopify/ProductVariant/42",
							"sku":         sku,
							"displayName": "Super Mario 64 - Nintendo 64 - New/Sealed",
							"barcode":     "045496870010",
							"price":       price,
							"selectedOptions": []any{
								map[string]any{"name": "Condition", "value": "New/Sealed"},
							},
						},
					},
				},
			},
		},
	}
}

func TestClientFetchNormalizesVariant(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-07/graphql.json" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			t.Fatalf("unexpected basic auth %q/%q (%v)", user, pass, ok)
		}
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if got := req.Variables["query"]; got != "sku:'N64-0001'" {
			t.Fatalf("unexpected search query %v", got)
		}
		if !strings.Contains(req.Query, "selectedOptions") {
			t.Fatalf("query missing selectedOptions: %s", req.Query)
		}
		_ = json.NewEncoder(w).Encode(variantPayload("N64-0001", "78.99"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "key", APISecret: "secret"},
		WithClock(func() time.Time { return fixed }))
	rec, err := client.Fetch(context.Background(), " N64-0001 ")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if rec.SKU != "N64-0001" || rec.Barcode != "045496870010" || rec.PriceString() != "78.99" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.VariantID != "gid://shopify/ProductVariant/42" {
		t.Fatalf("unexpected variant id %q", rec.VariantID)
	}
	if v, _ := rec.Attribute("Condition"); v != "New/Sealed" {
		t.Fatalf("unexpected condition %q", v)
	}
	if !rec.FetchedAt.Equal(fixed) {
		t.Fatalf("unexpected fetched_at %v", rec.FetchedAt)
	}
}

func TestClientFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"productVariants":{"edges":[]}}}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k", APISecret: "s"})
	if _, err := client.Fetch(context.Background(), "SKU-BAD"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientFetchSKUMismatchIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(variantPayload("SKU-10", "1.00"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.Fetch(context.Background(), "SKU-1"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientFetchStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, services.ErrAuth},
		{http.StatusForbidden, services.ErrAuth},
		{http.StatusServiceUnavailable, services.ErrNetwork},
		{http.StatusTooManyRequests, services.ErrNetwork},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"errors":"nope"}`))
		}))
		client := NewClient(Config{BaseURL: server.URL})
		_, err := client.Fetch(context.Background(), "SKU-1")
		server.Close()
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestClientFetchGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Access denied","extensions":{"code":"ACCESS_DENIED"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.Fetch(context.Background(), "SKU-1"); !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestClientFetchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.Fetch(context.Background(), "SKU-1"); !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestClientFetchMalformedPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(variantPayload("SKU-1", "free"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Fetch(context.Background(), "SKU-1")
	if !errors.Is(err, services.ErrNetwork) || !strings.Contains(err.Error(), "malformed response") {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

func TestClientFetchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url})
	if _, err := client.Fetch(context.Background(), "SKU-1"); !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestClientPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, _, _ := r.BasicAuth(); user != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"shop":{"name":"Demo"}}}`))
	}))
	defer server.Close()

	if err := NewClient(Config{BaseURL: server.URL, APIKey: "good"}).Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
	if err := NewClient(Config{BaseURL: server.URL, APIKey: "bad"}).Ping(context.Background()); !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestEscapeQueryValue(t *testing.T) {
	if got := escapeQueryValue(`O'Neil`); got != `O\'Neil` {
		t.Fatalf("unexpected escape %q", got)
	}
}
