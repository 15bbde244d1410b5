// Package cache provides the local single-slot document cache backed by a
// file on disk. Writes go through a temp file and rename so the slot is
// never observed half-written.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// FileCache stores the serialized document at a fixed path.
type FileCache struct {
	path string
}

var _ ports.LocalCache = (*FileCache)(nil)

// NewFileCache creates the cache, ensuring the parent directory exists.
func NewFileCache(path string) (*FileCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileCache{path: path}, nil
}

// Load reads the cached document. Returns apperrors.ErrNotFound when the
// slot has never been written.
func (c *FileCache) Load() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return data, nil
}

// Store rewrites the slot atomically.
func (c *FileCache) Store(data []byte) error {
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache temp file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
