package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdash/internal/logging"
)

func touch(t *testing.T, root string, parts ...string) {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`+"\n"), 0o644))
}

func TestDiscoverGroupsByDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "top.json")
	touch(t, root, "sales", "b.json")
	touch(t, root, "sales", "a.json")
	touch(t, root, "sales", "notes.txt")
	touch(t, root, "sales", "eu", "c.json")
	touch(t, root, "costs", "d.json")

	assets, err := Discover(root)
	require.NoError(t, err)

	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Name
	}
	assert.Equal(t, []string{RootAsset, "costs", "sales", "sales/eu"}, names)

	sales := assets[2]
	require.Len(t, sales.Files, 2)
	assert.Equal(t, "a.json", sales.Files[0].Name)
	assert.Equal(t, "b.json", sales.Files[1].Name)
	assert.Equal(t, filepath.Join(root, "sales", "a.json"), sales.Files[0].Path())
	assert.Equal(t, int64(8), sales.Files[0].Size)
	assert.Equal(t, int64(16), sales.Size())
}

func TestCatalogRefresh(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "sales", "a.json")

	c, err := New(root, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"sales"}, c.Names())

	_, ok := c.Get("costs")
	assert.False(t, ok)

	touch(t, root, "costs", "x.json")
	require.NoError(t, c.Refresh())
	assert.Equal(t, []string{"costs", "sales"}, c.Names())

	costs, ok := c.Get("costs")
	require.True(t, ok)
	assert.Len(t, costs.Files, 1)

	dirs, err := c.Dirs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root, filepath.Join(root, "costs"), filepath.Join(root, "sales")}, dirs)
}

func TestNewFailsOnMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), logging.Discard())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
