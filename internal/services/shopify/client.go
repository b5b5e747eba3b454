package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"labelprint/internal/product"
	"labelprint/internal/services"
)

const (
	defaultAPIVersion  = "2024-07"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 512
)

const variantQuery = `query($query: String!) {
  productVariants(first: 1, query: $query) {
    edges {
      node {
        id
        sku
        displayName
        barcode
        price
        selectedOptions { name value }
      }
    }
  }
}`

const pingQuery = `{ shop { name } }`

// Config captures the settings required to reach a shop's Admin API.
type Config struct {
	BaseURL        string
	APIVersion     string
	APIKey         string
	APISecret      string
	TimeoutSeconds int
}

// Client wraps the Shopify Admin GraphQL endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
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

// WithClock overrides the timestamp source used for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a Shopify client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIVersion:     strings.TrimSpace(cfg.APIVersion),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			APISecret:      strings.TrimSpace(cfg.APISecret),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.APIVersion == "" {
		client.cfg.APIVersion = defaultAPIVersion
	}
	return client
}

// Endpoint returns the GraphQL URL requests are posted to.
func (c *Client) Endpoint() string {
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.cfg.BaseURL, c.cfg.APIVersion)
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type variantNode struct {
	ID              string `json:"id"`
	SKU             string `json:"sku"`
	DisplayName     string `json:"displayName"`
	Barcode         string `json:"barcode"`
	Price           string `json:"price"`
	SelectedOptions []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"selectedOptions"`
}

type variantResponse struct {
	Data struct {
		ProductVariants struct {
			Edges []struct {
				Node variantNode `json:"node"`
			} `json:"edges"`
		} `json:"productVariants"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

type pingResponse struct {
	Data struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

// Fetch returns the product variant whose SKU exactly matches sku.
func (c *Client) Fetch(ctx context.Context, sku product.SKU) (product.Record, error) {
	var empty product.Record
	sku = product.NormalizeSKU(string(sku))
	if !sku.Valid() {
		return empty, services.Wrap(services.ErrNotFound, "shopify", "fetch", "sku required", nil)
	}

	req := gqlRequest{
		Query:     variantQuery,
		Variables: map[string]any{"query": fmt.Sprintf("sku:'%s'", escapeQueryValue(string(sku)))},
	}
	var resp variantResponse
	if err := c.do(ctx, "fetch", req, &resp); err != nil {
		return empty, err
	}
	if err := classifyGraphQLErrors("fetch", resp.Errors); err != nil {
		return empty, err
	}
	if len(resp.Data.ProductVariants.Edges) == 0 {
		return empty, services.Wrap(services.ErrNotFound, "shopify", "fetch", fmt.Sprintf("no variant with sku %q", sku), nil)
	}

	node := resp.Data.ProductVariants.Edges[0].Node
	if product.NormalizeSKU(node.SKU) != sku {
		return empty, services.Wrap(services.ErrNotFound, "shopify", "fetch",
			fmt.Sprintf("search for %q returned sku %q", sku, strings.TrimSpace(node.SKU)), nil)
	}
	return c.normalize(sku, node)
}

// Ping verifies that the configured credentials can query the shop.
func (c *Client) Ping(ctx context.Context) error {
	var resp pingResponse
	if err := c.do(ctx, "ping", gqlRequest{Query: pingQuery}, &resp); err != nil {
		return err
	}
	return classifyGraphQLErrors("ping", resp.Errors)
}

func (c *Client) normalize(sku product.SKU, node variantNode) (product.Record, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(node.Price))
	if err != nil {
		return product.Record{}, services.Wrap(services.ErrNetwork, "shopify", "fetch",
			fmt.Sprintf("malformed response: price %q", node.Price), err)
	}
	var attrs map[string]string
	if len(node.SelectedOptions) > 0 {
		attrs = make(map[string]string, len(node.SelectedOptions))
		for _, opt := range node.SelectedOptions {
			attrs[opt.Name] = opt.Value
		}
	}
	return product.NewRecord(sku, node.DisplayName, price, node.Barcode, node.ID, attrs, c.now()), nil
}

func (c *Client) do(ctx context.Context, op string, payload gqlRequest, out any) error {
	if c.cfg.BaseURL == "" {
		return services.Wrap(services.ErrConfiguration, "shopify", op, "base url required", nil)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("shopify %s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "shopify", op, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "shopify", op, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "shopify", op, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return services.Wrap(services.ErrAuth, "shopify", op, fmt.Sprintf("http %d", resp.StatusCode), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return services.Wrap(services.ErrNetwork, "shopify", op,
			fmt.Sprintf("http %d: %s", resp.StatusCode, snippet(raw)), nil)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return services.Wrap(services.ErrNetwork, "shopify", op, "malformed response", err)
	}
	return nil
}

func classifyGraphQLErrors(op string, errs []gqlError) error {
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, 0, len(errs))
	marker := services.ErrNetwork
	for _, e := range errs {
		messages = append(messages, strings.TrimSpace(e.Message))
		if strings.EqualFold(e.Extensions.Code, "ACCESS_DENIED") {
			marker = services.ErrAuth
		}
	}
	return services.Wrap(marker, "shopify", op, "graphql error", errors.New(strings.Join(messages, "; ")))
}

// escapeQueryValue protects quotes inside the search syntax value.
func escapeQueryValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}

func snippet(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}
