package app

import (
	"context"
	"log/slog"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"assetdash/internal/config"
	"assetdash/internal/domain"
	"assetdash/internal/service"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx    context.Context
	cfg    config.Config
	logger *slog.Logger

	svc  *Services
	runs *runWatcher
}

// New creates a new App.
func New(cfg config.Config, logger *slog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// wailsEmitter forwards service events to the frontend.
type wailsEmitter struct{}

func (wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	svc, err := Build(a.cfg, a.logger, wailsEmitter{})
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to start: %v", err)
		return
	}
	a.svc = svc

	if err := svc.StartBackground(ctx); err != nil {
		a.logger.Error("app: background jobs not started", "err", err)
	}

	// Runs started by a standalone MCP process only show up in the database.
	a.runs = newRunWatcher(ctx, svc.Exports, wailsEmitter{}, 2*time.Second)
	a.runs.Start()

	size := svc.Settings.LoadWindowSize()
	wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.svc == nil {
		return
	}
	w, h := wailsRuntime.WindowGetSize(ctx)
	if err := a.svc.Settings.SaveWindowSize(w, h); err != nil {
		a.logger.Warn("app: save window size", "err", err)
	}
	if a.runs != nil {
		a.runs.Stop()
	}

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	a.svc.Close(waitCtx)
}

// ============================================================
// Assets
// ============================================================

func (a *App) ListAssets() []service.AssetSummary {
	return a.svc.Assets.ListAssets()
}

// GetAssetView builds the dashboard of an asset and remembers it as the
// one to reopen next time.
func (a *App) GetAssetView(name string) (*service.AssetView, error) {
	view, err := a.svc.Assets.View(name)
	if err != nil {
		return nil, err
	}
	if err := a.svc.Settings.SetLastAsset(name); err != nil {
		a.logger.Warn("app: save last asset", "err", err)
	}
	return view, nil
}

func (a *App) LastAsset() string {
	return a.svc.Settings.LastAsset()
}

func (a *App) GetRecordSets(name string) ([]service.RecordSetInfo, error) {
	return a.svc.Assets.RecordSets(name)
}

func (a *App) GetRecordSet(name, recordPath string, wide bool) (*service.TableView, error) {
	return a.svc.Assets.RecordSet(name, recordPath, wide, 0)
}

// Rescan refreshes the asset list without waiting for the watcher.
func (a *App) Rescan() error {
	return a.svc.Watcher.Rescan(a.ctx)
}

// ============================================================
// Export
// ============================================================

func (a *App) ExportEnabled() bool {
	return a.svc.Exports.Enabled()
}

func (a *App) ExportAsset(name string) (*domain.ExportRun, error) {
	return a.svc.Exports.ExportAsset(a.ctx, name)
}

func (a *App) ListExportRuns(asset string) ([]domain.ExportRun, error) {
	return a.svc.Exports.ListRuns(asset, 50)
}
