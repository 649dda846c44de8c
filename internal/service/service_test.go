package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdash/internal/catalog"
	"assetdash/internal/etl"
	"assetdash/internal/logging"
	"assetdash/internal/service"
)

const (
	salesLine     = `{"metric":[{"period":[{"sales":100,"region":"north"},{"sales":150,"region":"south"}]}]}`
	inventoryLine = `{"stock":[{"sku":"a1","qty":"low"}]}`
	productLine   = `{"name":"widget","price":9.5}`
)

// writeAsset writes a JSON Lines file under root/dir.
func writeAsset(t *testing.T, root, dir, name string, lines ...string) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, name), []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

// newAssets builds a catalog over a fresh data dir holding three assets.
func newAssets(t *testing.T) (*service.AssetService, *catalog.Catalog, string) {
	t.Helper()
	root := t.TempDir()
	writeAsset(t, root, "sales-report", "q1.json", salesLine)
	writeAsset(t, root, "inventory", "stock.json", inventoryLine)
	writeAsset(t, root, "products", "items.json", productLine)

	logger := logging.Discard()
	cat, err := catalog.New(root, logger)
	require.NoError(t, err)
	return service.NewAssetService(cat, etl.NewEngine(logger), 10, logger), cat, root
}

// ─────────────────────────────────────────────────────────────
// runningGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunningGuard_TryLock(t *testing.T) {
	var g service.ExportedRunningGuard

	require.True(t, g.TryLock("sales"))
	assert.False(t, g.TryLock("sales"), "second lock of the same key")
	assert.True(t, g.TryLock("inventory"))
	assert.True(t, g.Running("sales"))

	g.Unlock("sales")
	g.Unlock("inventory")
	assert.False(t, g.Running("sales"))

	require.True(t, g.TryLock("sales"), "lock after unlock")
	g.Unlock("sales")
}

func TestRunningGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunningGuard
	require.True(t, g.TryLock("sales"))

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("sales")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitAll timed out")
	}
	assert.False(t, g.Running("sales"))
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, service.EventAssetsUpdated, []string{"sales"})
	m.Emit(ctx, service.EventExportStarted, nil)
	m.Emit(ctx, service.EventAssetsUpdated, nil)

	events := m.Events()
	require.Len(t, events, 3)
	assert.Equal(t, service.EventAssetsUpdated, events[0].Event)
	assert.Equal(t, []string{"sales"}, events[0].Data)
	assert.Equal(t, 2, m.Count(service.EventAssetsUpdated))
}
