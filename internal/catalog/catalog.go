package catalog

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"assetdash/internal/domain"
)

// Ext is the extension of the files the catalog picks up. Their content is
// JSON Lines.
const Ext = ".json"

// RootAsset names the asset made of files directly under the data root.
const RootAsset = "."

// ListFiles walks root and returns every *.json file in lexical path order.
func ListFiles(root string) ([]domain.FileRef, error) {
	var files []domain.FileRef
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), Ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		files = append(files, domain.FileRef{
			Root:    root,
			Dir:     filepath.ToSlash(rel),
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// Discover groups the files under root into assets by directory, sorted by
// name.
func Discover(root string) ([]domain.Asset, error) {
	files, err := ListFiles(root)
	if err != nil {
		return nil, err
	}
	byDir := make(map[string][]domain.FileRef)
	for _, f := range files {
		byDir[f.Dir] = append(byDir[f.Dir], f)
	}
	assets := make([]domain.Asset, 0, len(byDir))
	for dir, refs := range byDir {
		assets = append(assets, domain.Asset{Name: dir, Files: refs})
	}
	slices.SortFunc(assets, func(a, b domain.Asset) int { return strings.Compare(a.Name, b.Name) })
	return assets, nil
}

// Catalog holds the assets found under one data root. It is built once at
// startup and rebuilt on Refresh; readers always see a complete snapshot.
type Catalog struct {
	root   string
	logger *slog.Logger

	mu     sync.RWMutex
	assets []domain.Asset
	byName map[string]int
}

// New builds a catalog and runs the first discovery.
func New(root string, logger *slog.Logger) (*Catalog, error) {
	c := &Catalog{root: root, logger: logger}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Root() string { return c.root }

// Refresh rediscovers the assets. On failure the previous snapshot stays.
func (c *Catalog) Refresh() error {
	assets, err := Discover(c.root)
	if err != nil {
		return err
	}
	byName := make(map[string]int, len(assets))
	for i, a := range assets {
		byName[a.Name] = i
	}

	c.mu.Lock()
	c.assets, c.byName = assets, byName
	c.mu.Unlock()

	c.logger.Debug("catalog: refreshed", "root", c.root, "assets", len(assets))
	return nil
}

// Names returns asset names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.assets))
	for i, a := range c.assets {
		names[i] = a.Name
	}
	return names
}

// Get returns the named asset.
func (c *Catalog) Get(name string) (domain.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byName[name]
	if !ok {
		return domain.Asset{}, false
	}
	return c.assets[i], true
}

// Assets returns a copy of the current snapshot.
func (c *Catalog) Assets() []domain.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.assets)
}

// Dirs lists the root and every directory below it, for watching.
func (c *Catalog) Dirs() ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", c.root, err)
	}
	return dirs, nil
}
