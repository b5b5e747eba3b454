package config

const (
	defaultCacheDir            = "~/.cache/labelprint/products"
	defaultOutputDir           = "~/labels"
	defaultStateDir            = "~/.local/share/labelprint"
	defaultTemplatePath        = "~/.config/labelprint/label.zpl"
	defaultShopifyAPIVersion   = "2024-07"
	defaultShopifyTimeout      = 30
	defaultZebraBaseURL        = "https://api.zebra.com/v2/devices/printers/send"
	defaultZebraTimeout        = 30
	defaultRenderBaseURL       = "http://api.labelary.com"
	defaultRenderFormat        = "png"
	defaultRenderDPMM          = 8
	defaultRenderTimeout       = 30
	defaultLabelWidthInches    = 2.25
	defaultLabelHeightInches   = 1.25
	defaultArchivePrefix       = "labels"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultTitleLineMaxChars   = 26
	defaultPriceLineMaxChars   = 12
	defaultPriceTypeLineMaxLen = 12
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Shopify: Shopify{
			APIVersion:     defaultShopifyAPIVersion,
			TimeoutSeconds: defaultShopifyTimeout,
		},
		Zebra: Zebra{
			BaseURL:        defaultZebraBaseURL,
			TimeoutSeconds: defaultZebraTimeout,
		},
		Paths: Paths{
			CacheDir:  defaultCacheDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Label: Label{
			TemplatePath: defaultTemplatePath,
			WidthInches:  defaultLabelWidthInches,
			HeightInches: defaultLabelHeightInches,
			LineMaxChars: defaultLineMaxChars(),
		},
		Render: Render{
			BaseURL:        defaultRenderBaseURL,
			Format:         defaultRenderFormat,
			DPMM:           defaultRenderDPMM,
			TimeoutSeconds: defaultRenderTimeout,
		},
		Archive: Archive{
			Prefix: defaultArchivePrefix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultLineMaxChars() map[string]int {
	return map[string]int{
		"PRODUCT_TITLE_L1": defaultTitleLineMaxChars,
		"PRODUCT_TITLE_L2": defaultTitleLineMaxChars,
		"PRICE_STR":        defaultPriceLineMaxChars,
		"PRICE_TYPE":       defaultPriceTypeLineMaxLen,
	}
}
