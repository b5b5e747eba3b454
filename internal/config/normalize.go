package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

func (c *Config) normalize(dotenv map[string]string) error {
	c.normalizeCredentials(dotenv)
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeShopify()
	c.normalizeZebra()
	c.normalizeLabel()
	c.normalizeRender()
	c.normalizeArchive()
	c.normalizeLogging()
	return nil
}

// lookupCredential prefers the process environment over .env values.
func lookupCredential(dotenv map[string]string, key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(dotenv[key])
}

func (c *Config) normalizeCredentials(dotenv map[string]string) {
	fields := []struct {
		value *string
		env   string
	}{
		{&c.ShopifyAPIKey, "SHOPIFY_API_KEY"},
		{&c.ShopifyAPISecret, "SHOPIFY_API_SECRET"},
		{&c.ZebraAPIKey, "ZEBRA_API_KEY"},
		{&c.ZebraAPISecret, "ZEBRA_API_SECRET"},
	}
	for _, field := range fields {
		*field.value = strings.TrimSpace(*field.value)
		if *field.value == "" {
			*field.value = lookupCredential(dotenv, field.env)
		}
	}
	c.NetworkPrinterName = strings.TrimSpace(c.NetworkPrinterName)
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Label.TemplatePath) == "" {
		c.Label.TemplatePath = defaultTemplatePath
	}
	if c.Label.TemplatePath, err = expandPath(c.Label.TemplatePath); err != nil {
		return fmt.Errorf("label.template_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeShopify() {
	c.Shopify.BaseURL = strings.TrimRight(strings.TrimSpace(c.Shopify.BaseURL), "/")
	if c.Shopify.BaseURL == "" {
		if value, ok := os.LookupEnv("SHOPIFY_BASE_URL"); ok {
			c.Shopify.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	c.Shopify.APIVersion = strings.TrimSpace(c.Shopify.APIVersion)
	if c.Shopify.APIVersion == "" {
		c.Shopify.APIVersion = defaultShopifyAPIVersion
	}
	if c.Shopify.TimeoutSeconds == 0 {
		c.Shopify.TimeoutSeconds = defaultShopifyTimeout
	}
}

func (c *Config) normalizeZebra() {
	c.Zebra.BaseURL = strings.TrimSpace(c.Zebra.BaseURL)
	if c.Zebra.BaseURL == "" {
		c.Zebra.BaseURL = defaultZebraBaseURL
	}
	c.Zebra.PrinterSerial = strings.TrimSpace(c.Zebra.PrinterSerial)
	if c.Zebra.TimeoutSeconds == 0 {
		c.Zebra.TimeoutSeconds = defaultZebraTimeout
	}
}

func (c *Config) normalizeLabel() {
	if c.Label.WidthInches == 0 {
		c.Label.WidthInches = defaultLabelWidthInches
	}
	if c.Label.HeightInches == 0 {
		c.Label.HeightInches = defaultLabelHeightInches
	}
	c.Label.LineMaxChars = mergeLineMaxChars(c.Label.LineMaxChars)
	if c.Label.SheetSize < 0 {
		c.Label.SheetSize = 0
	}
}

func (c *Config) normalizeRender() {
	c.Render.BaseURL = strings.TrimRight(strings.TrimSpace(c.Render.BaseURL), "/")
	if c.Render.BaseURL == "" {
		c.Render.BaseURL = defaultRenderBaseURL
	}
	c.Render.Format = strings.ToLower(strings.TrimSpace(c.Render.Format))
	if c.Render.Format == "" {
		c.Render.Format = defaultRenderFormat
	}
	if c.Render.DPMM == 0 {
		c.Render.DPMM = defaultRenderDPMM
	}
	if c.Render.TimeoutSeconds == 0 {
		c.Render.TimeoutSeconds = defaultRenderTimeout
	}
}

func (c *Config) normalizeArchive() {
	c.Archive.Bucket = strings.TrimSpace(c.Archive.Bucket)
	c.Archive.Prefix = strings.Trim(strings.TrimSpace(c.Archive.Prefix), "/")
	c.Archive.Region = strings.TrimSpace(c.Archive.Region)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// mergeLineMaxChars lays configured widths over the defaults. Keys written in
// canonical upper case apply first so a spelling like product_title_l1 always
// wins over a default that shares its folded name.
func mergeLineMaxChars(configured map[string]int) map[string]int {
	widths := defaultLineMaxChars()
	keys := make([]string, 0, len(configured))
	for key := range configured {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := isCanonicalKey(keys[i]), isCanonicalKey(keys[j])
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})
	for _, key := range keys {
		folded := strings.ToUpper(strings.TrimSpace(key))
		if folded == "" {
			continue
		}
		widths[folded] = configured[key]
	}
	return widths
}

func isCanonicalKey(key string) bool {
	return key == strings.ToUpper(strings.TrimSpace(key))
}
