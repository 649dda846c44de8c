package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdash/internal/config"
	"assetdash/internal/domain"
	"assetdash/internal/logging"
	"assetdash/internal/service"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	data := t.TempDir()
	dir := filepath.Join(data, "inventory")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stock.json"),
		[]byte(`{"stock":[{"sku":"a1","qty":"low"},{"sku":"b2","qty":"high"}]}`+"\n"), 0o644))

	cfg := config.Default()
	cfg.DataDir = data
	cfg.StateDir = filepath.Join(t.TempDir(), "state")
	cfg.Watch = false
	return cfg
}

func TestBuildWiresServices(t *testing.T) {
	cfg := testConfig(t)
	svc, err := Build(cfg, logging.Discard(), noopEmitter{})
	require.NoError(t, err)
	defer svc.Close(context.Background())

	assert.FileExists(t, cfg.DBPath())
	assert.Equal(t, []string{"inventory"}, svc.Catalog.Names())
	assert.False(t, svc.Exports.Enabled())
	require.NoError(t, svc.StartBackground(context.Background()))

	view, err := svc.Assets.View("inventory")
	require.NoError(t, err)
	require.Len(t, view.Panels, 1)
	assert.Equal(t, []string{"stock", "sku", "qty"}, view.Panels[0].Table.Columns)
}

func TestExportOnce(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Driver = domain.DatabaseDriverSQLite
	cfg.Export.Host = filepath.Join(t.TempDir(), "export.db")

	run, err := ExportOnce(context.Background(), cfg, logging.Discard(), "inventory")
	require.NoError(t, err)
	assert.Equal(t, domain.ExportSuccess, run.Status)
	assert.Equal(t, 1, run.Tables)
	assert.Equal(t, 4, run.RowsWritten)
	assert.FileExists(t, cfg.Export.Host)
}

func TestExportOnceDisabled(t *testing.T) {
	_, err := ExportOnce(context.Background(), testConfig(t), logging.Discard(), "inventory")
	assert.ErrorIs(t, err, service.ErrExportDisabled)
}

type fakeRuns struct {
	mu   sync.Mutex
	runs []domain.ExportRun
}

func (f *fakeRuns) ListRuns(string, int) ([]domain.ExportRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.runs) == 0 {
		return nil, nil
	}
	return f.runs[len(f.runs)-1:], nil
}

func (f *fakeRuns) add(r domain.ExportRun) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, r)
}

func TestRunWatcherEmitsNewRuns(t *testing.T) {
	runs := &fakeRuns{}
	runs.add(domain.ExportRun{ID: "old", Status: domain.ExportSuccess})
	emitter := &service.MockEmitter{}
	w := newRunWatcher(context.Background(), runs, emitter, time.Hour)

	w.check()
	assert.Zero(t, emitter.Count(service.EventExportFinished), "baseline is not emitted")

	runs.add(domain.ExportRun{ID: "new", Status: domain.ExportRunning})
	w.check()
	assert.Zero(t, emitter.Count(service.EventExportFinished), "running runs wait")

	runs.runs[1].Status = domain.ExportFailed
	w.check()
	w.check()
	events := emitter.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].Data.(domain.ExportRun).ID)
}

func TestRunWatcherFirstRunAfterEmptyLog(t *testing.T) {
	runs := &fakeRuns{}
	emitter := &service.MockEmitter{}
	w := newRunWatcher(context.Background(), runs, emitter, 10*time.Millisecond)
	w.Start()
	defer w.Stop()

	runs.add(domain.ExportRun{ID: "r1", Status: domain.ExportSuccess})
	require.Eventually(t, func() bool {
		return emitter.Count(service.EventExportFinished) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
