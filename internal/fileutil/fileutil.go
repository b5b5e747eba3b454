// Package fileutil holds the small file helpers shared by the cache and the
// label renderer.
package fileutil

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// TempSuffix is appended to a target path while its contents are being written.
const TempSuffix = ".tmp"

// WriteFileAtomic writes data to <path>.tmp and renames it over path, so
// readers see either the previous contents or the complete new file.
// The parent directory is created when missing.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmpPath := path + TempSuffix
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// SafeName escapes name so it can be used as a single path element.
// The mapping is reversible with url.PathUnescape.
func SafeName(name string) string {
	escaped := url.PathEscape(name)
	switch escaped {
	case ".", "..":
		return escaped[:len(escaped)-1] + "%2E"
	}
	return escaped
}
