package feed

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile replaces the feed file atomically: the new document is written
// to a temporary file in the same directory and renamed over the old one,
// so readers never observe a partial feed and a failed run leaves the
// previous feed untouched.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary feed file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temporary feed file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temporary feed file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace feed file: %w", err)
	}

	return nil
}
