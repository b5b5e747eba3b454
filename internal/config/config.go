package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// dotenvPath is resolved relative to the working directory.
var dotenvPath = ".env"

// Shopify contains connection settings for the Shopify Admin API.
type Shopify struct {
	BaseURL        string `toml:"base_url"`
	APIVersion     string `toml:"api_version"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Zebra contains settings for Zebra's cloud SendFileToPrinter API.
type Zebra struct {
	BaseURL        string `toml:"base_url"`
	PrinterSerial  string `toml:"printer_serial"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Paths contains directory configuration.
type Paths struct {
	CacheDir  string `toml:"cache_dir"`
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
}

// Label describes the label template and its physical layout.
type Label struct {
	TemplatePath string         `toml:"template_path"`
	WidthInches  float64        `toml:"width_inches"`
	HeightInches float64        `toml:"height_inches"`
	LineMaxChars map[string]int `toml:"line_max_chars"`
	// SheetSize > 0 also renders each batch into PDFs of SheetSize labels.
	SheetSize int `toml:"sheet_size"`
}

// Render contains configuration for the Labelary rendering service.
type Render struct {
	BaseURL        string `toml:"base_url"`
	Format         string `toml:"format"` // png or pdf
	DPMM           int    `toml:"dpmm"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Archive contains configuration for uploading rendered labels to S3.
type Archive struct {
	Enabled bool   `toml:"enabled"`
	Bucket  string `toml:"bucket"`
	Prefix  string `toml:"prefix"`
	Region  string `toml:"region"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for labelprint.
//
// The top-level keys are the credentials and print toggles; everything else
// lives in a section:
//   - Shopify: product lookup endpoint
//   - Zebra: cloud print endpoint and printer serial
//   - Paths: product cache, rendered label output, state (logs, history, lock)
//   - Label: template file and layout
//   - Render: Labelary rendering service
//   - Archive: optional S3 copy of every rendered label
//   - Logging: log format and level
type Config struct {
	ShopifyAPIKey      string `toml:"shopify_api_key"`
	ShopifyAPISecret   string `toml:"shopify_api_secret"`
	ZebraAPIKey        string `toml:"zebra_api_key"`
	ZebraAPISecret     string `toml:"zebra_api_secret"`
	NetworkPrinterName string `toml:"network_printer_name"`
	EnableCloudPrint   bool   `toml:"enable_cloud_print"`
	EnableNetworkPrint bool   `toml:"enable_network_print"`

	Shopify Shopify `toml:"shopify"`
	Zebra   Zebra   `toml:"zebra"`
	Paths   Paths   `toml:"paths"`
	Label   Label   `toml:"label"`
	Render  Render  `toml:"render"`
	Archive Archive `toml:"archive"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/labelprint/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file is not an error by itself; the
// defaults are validated instead, which fails unless credentials come from the environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// go-toml merges into existing maps; start clean so only the file's
		// widths are layered over the defaults in normalize.
		cfg.Label.LineMaxChars = nil
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	env, err := loadDotenv(dotenvPath)
	if err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(env); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("labelprint.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// loadDotenv reads KEY=value pairs without mutating the process environment.
func loadDotenv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

// EnsureDirectories creates the cache, output, and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.OutputDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogPath returns the session log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "labelprint.log")
}

// HistoryPath returns the run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// PrintEnabled reports whether any dispatch destination is switched on.
func (c *Config) PrintEnabled() bool {
	return c.EnableCloudPrint || c.EnableNetworkPrint
}

// SpoolerBinary returns the local print spooler executable name.
func (c *Config) SpoolerBinary() string {
	return "lpr"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
