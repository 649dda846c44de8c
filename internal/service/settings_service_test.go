package service_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdash/internal/service"
	"assetdash/internal/storage"
)

func TestSettingsService_WindowSize(t *testing.T) {
	db, err := storage.New(filepath.Join(t.TempDir(), "assetdash.db"))
	require.NoError(t, err)
	defer db.Close()
	svc := service.NewSettingsService(storage.NewSettingsStore(db))

	assert.Equal(t, service.WindowSize{Width: 1280, Height: 800}, svc.LoadWindowSize())

	require.NoError(t, svc.SaveWindowSize(1600, 1000))
	assert.Equal(t, service.WindowSize{Width: 1600, Height: 1000}, svc.LoadWindowSize())

	require.NoError(t, svc.SaveWindowSize(300, 200))
	assert.Equal(t, service.WindowSize{Width: 1280, Height: 800}, svc.LoadWindowSize(), "too small falls back")
}

func TestSettingsService_LastAsset(t *testing.T) {
	db, err := storage.New(filepath.Join(t.TempDir(), "assetdash.db"))
	require.NoError(t, err)
	defer db.Close()
	svc := service.NewSettingsService(storage.NewSettingsStore(db))

	assert.Empty(t, svc.LastAsset())
	require.NoError(t, svc.SetLastAsset("sales-report"))
	assert.Equal(t, "sales-report", svc.LastAsset())
}

func TestSettingsService_NilStore(t *testing.T) {
	svc := service.NewSettingsService(nil)
	assert.Equal(t, service.WindowSize{Width: 1280, Height: 800}, svc.LoadWindowSize())
	assert.NoError(t, svc.SaveWindowSize(1, 1))
	assert.Empty(t, svc.LastAsset())
}
