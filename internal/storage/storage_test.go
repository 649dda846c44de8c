package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdash/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "state", "assetdash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assetdash.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestExportStoreLifecycle(t *testing.T) {
	store := NewExportStore(openTestDB(t))

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	run := &domain.ExportRun{Asset: "sales", Driver: domain.DatabaseDriverSQLite, Mode: "replace", StartedAt: start}
	require.NoError(t, store.CreateRun(run))
	require.NotEmpty(t, run.ID)
	assert.Equal(t, domain.ExportRunning, run.Status)

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "sales", got.Asset)
	assert.True(t, got.FinishedAt.IsZero())

	run.Status = domain.ExportSuccess
	run.Tables = 2
	run.RowsWritten = 40
	run.DurationMs = 12
	run.FinishedAt = start.Add(time.Second)
	require.NoError(t, store.UpdateRun(run))

	got, err = store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExportSuccess, got.Status)
	assert.Equal(t, 2, got.Tables)
	assert.Equal(t, 40, got.RowsWritten)
	assert.Equal(t, int64(12), got.DurationMs)
	assert.True(t, got.FinishedAt.Equal(start.Add(time.Second)))
}

func TestExportStoreListRuns(t *testing.T) {
	store := NewExportStore(openTestDB(t))
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, asset := range []string{"sales", "costs", "sales"} {
		require.NoError(t, store.CreateRun(&domain.ExportRun{
			Asset:     asset,
			Driver:    domain.DatabaseDriverSQLite,
			Mode:      "replace",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	sales, err := store.ListRuns("sales", 10)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.True(t, sales[0].StartedAt.After(sales[1].StartedAt))

	all, err := store.ListRuns("", 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestExportStoreMissingRun(t *testing.T) {
	store := NewExportStore(openTestDB(t))
	_, err := store.GetRun("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, store.UpdateRun(&domain.ExportRun{ID: "nope"}), ErrRunNotFound)
}

func TestSettingsStore(t *testing.T) {
	s := NewSettingsStore(openTestDB(t))

	_, ok, err := s.Get("last_asset")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1280, s.GetInt("window_width", 1280))

	require.NoError(t, s.Set("last_asset", "sales"))
	require.NoError(t, s.Set("last_asset", "costs"))
	v, ok, err := s.Get("last_asset")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "costs", v)

	require.NoError(t, s.SetInt("window_width", 1600))
	assert.Equal(t, 1600, s.GetInt("window_width", 1280))

	require.NoError(t, s.Set("window_height", "tall"))
	assert.Equal(t, 800, s.GetInt("window_height", 800))
}
