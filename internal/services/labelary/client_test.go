package labelary

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"labelprint/internal/services"
)

func TestClientRenderPNG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/printers/8dpmm/labels/2.25x1.25/0/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "^XA^XZ" {
			t.Fatalf("unexpected body %q", body)
		}
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, WidthInches: 2.25, HeightInches: 1.25})
	img, err := client.Render(context.Background(), "^XA^XZ", FormatPNG)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if string(img) != "\x89PNG" {
		t.Fatalf("unexpected image %q", img)
	}
}

func TestClientRenderPDFRequestsAllLabels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/printers/12dpmm/labels/4x6/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/pdf" {
			t.Fatalf("unexpected accept header %q", got)
		}
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, DPMM: 12, WidthInches: 4, HeightInches: 6})
	if _, err := client.Render(context.Background(), "^XA^XZ", "PDF"); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
}

func TestClientRenderFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("ERROR: bad zpl"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, WidthInches: 2, HeightInches: 1})
	if _, err := client.Render(context.Background(), "junk", FormatPNG); !errors.Is(err, services.ErrRenderService) {
		t.Fatalf("expected render service error, got %v", err)
	}
	if _, err := client.Render(context.Background(), "^XA^XZ", "bmp"); !errors.Is(err, services.ErrRenderService) {
		t.Fatalf("expected render service error for bad format, got %v", err)
	}

	url := server.URL
	server.Close()
	offline := NewClient(Config{BaseURL: url, WidthInches: 2, HeightInches: 1})
	if _, err := offline.Render(context.Background(), "^XA^XZ", FormatPNG); !errors.Is(err, services.ErrRenderService) {
		t.Fatalf("expected render service error when offline, got %v", err)
	}
}
