package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontovivo/ponto_vivo_app/internal/adapters/cache"
	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
)

func TestLoad_EmptySlot(t *testing.T) {
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	_, err = c.Load()
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStoreThenLoad_RoundTrips(t *testing.T) {
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	payload := []byte(`{"organizations":[]}`)
	require.NoError(t, c.Store(payload))

	got, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStore_OverwritesPreviousValue(t *testing.T) {
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	require.NoError(t, c.Store([]byte(`1`)))
	require.NoError(t, c.Store([]byte(`2`)))

	got, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte(`2`), got)
}

func TestStore_LeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	c, err := cache.NewFileCache(path)
	require.NoError(t, err)

	require.NoError(t, c.Store([]byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cache.json", entries[0].Name())
}

func TestNewFileCache_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")

	c, err := cache.NewFileCache(path)
	require.NoError(t, err)
	require.NoError(t, c.Store([]byte(`{}`)))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
