package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateShopify(); err != nil {
		return err
	}
	if err := c.validatePrinting(); err != nil {
		return err
	}
	if err := c.validateLabel(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateShopify() error {
	if c.ShopifyAPIKey == "" || c.ShopifyAPISecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/labelprint/config.toml"
		}
		return fmt.Errorf("shopify_api_key and shopify_api_secret are required. Set SHOPIFY_API_KEY/SHOPIFY_API_SECRET or edit %s (create with 'labelprint config init')", defaultPath)
	}
	if c.Shopify.BaseURL == "" {
		return errors.New("shopify.base_url must be set (for example https://your-shop.myshopify.com)")
	}
	if c.Shopify.TimeoutSeconds <= 0 {
		return errors.New("shopify.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePrinting() error {
	if c.EnableNetworkPrint && c.NetworkPrinterName == "" {
		return errors.New("network_printer_name must be set when enable_network_print is true")
	}
	if !c.EnableCloudPrint {
		return nil
	}
	if c.ZebraAPIKey == "" || c.ZebraAPISecret == "" {
		return errors.New("zebra_api_key and zebra_api_secret must be set when enable_cloud_print is true")
	}
	if c.Zebra.PrinterSerial == "" {
		return errors.New("zebra.printer_serial must be set when enable_cloud_print is true")
	}
	if c.Zebra.TimeoutSeconds <= 0 {
		return errors.New("zebra.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLabel() error {
	if c.Label.WidthInches <= 0 || c.Label.HeightInches <= 0 {
		return errors.New("label.width_inches and label.height_inches must be positive")
	}
	for key, width := range c.Label.LineMaxChars {
		if width <= 0 {
			return fmt.Errorf("label.line_max_chars.%s must be positive", key)
		}
	}
	return nil
}

func (c *Config) validateRender() error {
	switch c.Render.Format {
	case "png", "pdf":
	default:
		return fmt.Errorf("render.format: unsupported value %q (use png or pdf)", c.Render.Format)
	}
	if c.Render.DPMM <= 0 {
		return errors.New("render.dpmm must be positive")
	}
	if c.Render.TimeoutSeconds <= 0 {
		return errors.New("render.timeout_seconds must be positive")
	}
	if !strings.HasPrefix(c.Render.BaseURL, "http://") && !strings.HasPrefix(c.Render.BaseURL, "https://") {
		return errors.New("render.base_url must be an http(s) URL")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if !c.Archive.Enabled {
		return nil
	}
	if c.Archive.Bucket == "" {
		return errors.New("archive.bucket must be set when archive.enabled is true")
	}
	return nil
}
