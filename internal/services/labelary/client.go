// Package labelary renders ZPL markup into PNG or PDF images through the
// Labelary HTTP API.
package labelary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"labelprint/internal/services"
)

const (
	defaultBaseURL     = "http://api.labelary.com"
	defaultHTTPTimeout = 30 * time.Second
	defaultDPMM        = 8
	maxErrorBody       = 512
)

// Output formats the service can produce.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Config captures the rendering service settings.
type Config struct {
	BaseURL        string
	DPMM           int
	WidthInches    float64
	HeightInches   float64
	TimeoutSeconds int
}

// Client wraps the Labelary label rendering endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Labelary client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.DPMM <= 0 {
		cfg.DPMM = defaultDPMM
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// URL returns the render endpoint for format. PNG requests address the first
// label of the markup; PDF requests render every label into one document.
func (c *Client) URL(format string) string {
	u := fmt.Sprintf("%s/v1/printers/%ddpmm/labels/%sx%s/",
		c.cfg.BaseURL, c.cfg.DPMM, formatInches(c.cfg.WidthInches), formatInches(c.cfg.HeightInches))
	if format != FormatPDF {
		u += "0/"
	}
	return u
}

// Render posts markup and returns the rendered image bytes.
func (c *Client) Render(ctx context.Context, markup, format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatPNG && format != FormatPDF {
		return nil, services.Wrap(services.ErrRenderService, "labelary", "render", fmt.Sprintf("unsupported format %q", format), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(format), strings.NewReader(markup))
	if err != nil {
		return nil, services.Wrap(services.ErrRenderService, "labelary", "render", "build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if format == FormatPDF {
		req.Header.Set("Accept", "application/pdf")
	} else {
		req.Header.Set("Accept", "image/png")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrRenderService, "labelary", "render", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrRenderService, "labelary", "render", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody] + "..."
		}
		return nil, services.Wrap(services.ErrRenderService, "labelary", "render",
			fmt.Sprintf("http %d: %s", resp.StatusCode, text), nil)
	}
	if len(body) == 0 {
		return nil, services.Wrap(services.ErrRenderService, "labelary", "render", "empty image", nil)
	}
	return body, nil
}

func formatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
