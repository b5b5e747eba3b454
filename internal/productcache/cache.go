package productcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"labelprint/internal/fileutil"
	"labelprint/internal/logging"
	"labelprint/internal/product"
	"labelprint/internal/services"
)

const (
	fileSuffix   = ".json"
	lockFileName = ".session.lock"
)

// Entry describes one cached record on disk.
type Entry struct {
	SKU      product.SKU
	Path     string
	Size     int64
	Modified time.Time
}

// Cache maps SKUs to JSON files under a single root directory.
type Cache struct {
	root   string
	logger *slog.Logger
}

// New creates a cache rooted at root. The directory is created lazily on the first Put.
func New(root string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		root:   root,
		logger: logging.NewComponentLogger(logger, "productcache"),
	}
}

// Root returns the cache directory.
func (c *Cache) Root() string { return c.root }

// Path returns the file that holds the record for sku.
func (c *Cache) Path(sku product.SKU) string {
	return filepath.Join(c.root, fileutil.SafeName(string(product.NormalizeSKU(string(sku))))+fileSuffix)
}

// Get returns the cached record for sku. Any failure to read or decode the
// entry is reported as a miss.
func (c *Cache) Get(sku product.SKU) (product.Record, bool) {
	sku = product.NormalizeSKU(string(sku))
	if !sku.Valid() {
		return product.Record{}, false
	}
	path := c.Path(sku)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(c.logger, "product cache entry unreadable", "productcache_read_failed",
				logging.SKU(sku),
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the cache directory"),
				logging.String(logging.FieldImpact, "product will be fetched from Shopify"))
		}
		return product.Record{}, false
	}

	var rec product.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		c.warnMalformed(sku, path, err)
		return product.Record{}, false
	}
	if product.NormalizeSKU(string(rec.SKU)) != sku {
		c.warnMalformed(sku, path, fmt.Errorf("entry holds sku %q", rec.SKU))
		return product.Record{}, false
	}

	c.logger.Debug("product cache hit", logging.SKU(sku))
	return rec.Clone(), true
}

// Put writes rec as the entry for sku, replacing any existing file.
func (c *Cache) Put(sku product.SKU, rec product.Record) error {
	sku = product.NormalizeSKU(string(sku))
	if !sku.Valid() {
		return services.Wrap(services.ErrValidation, "productcache", "put", "sku cannot be empty", nil)
	}
	rec.SKU = sku

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	path := c.Path(sku)
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("persist record: %w", err)
	}

	c.logger.Debug("cached product record",
		logging.SKU(sku),
		logging.String("path", path))
	return nil
}

// List returns every entry in the cache sorted by SKU.
func (c *Cache) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(c.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		raw, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			SKU:      product.SKU(raw),
			Path:     filepath.Join(c.root, name),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].SKU < entries[j].SKU })
	return entries, nil
}

// Remove deletes the entry for sku.
func (c *Cache) Remove(sku product.SKU) error {
	sku = product.NormalizeSKU(string(sku))
	if !sku.Valid() {
		return services.Wrap(services.ErrValidation, "productcache", "remove", "sku cannot be empty", nil)
	}
	if err := os.Remove(c.Path(sku)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "productcache", "remove", fmt.Sprintf("sku %q not cached", sku), nil)
		}
		return fmt.Errorf("remove cache entry: %w", err)
	}
	c.logger.Debug("removed product cache entry", logging.SKU(sku))
	return nil
}

// Clear removes every entry and returns how many were deleted.
func (c *Cache) Clear() (int, error) {
	entries, err := c.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if err := os.Remove(entry.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove cache entry: %w", err)
		}
		removed++
	}
	c.logger.Debug("cleared product cache", logging.Int("entry_count", removed))
	return removed, nil
}

// Lock takes the session lock for this cache root. The caller releases it with Unlock.
func (c *Cache) Lock() (*flock.Flock, error) {
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	lockPath := filepath.Join(c.root, lockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "productcache", "lock", "acquire session lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "productcache", "lock",
			fmt.Sprintf("another session is using %s", c.root), nil)
	}
	return lock, nil
}

func (c *Cache) warnMalformed(sku product.SKU, path string, err error) {
	logging.WarnWithContext(c.logger, "product cache entry malformed", "productcache_malformed",
		logging.SKU(sku),
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "entry will be replaced on the next successful fetch"),
		logging.String(logging.FieldImpact, "product will be fetched from Shopify"))
}
