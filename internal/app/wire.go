package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"assetdash/internal/catalog"
	"assetdash/internal/config"
	"assetdash/internal/dbclient"
	"assetdash/internal/etl"
	"assetdash/internal/secret"
	"assetdash/internal/service"
	"assetdash/internal/storage"
)

// Services is everything one process needs, built from the config.
// The desktop app, the MCP server and the export command share it.
type Services struct {
	Config  config.Config
	Logger  *slog.Logger
	DB      *storage.DB
	Catalog *catalog.Catalog

	Assets   *service.AssetService
	Exports  *service.ExportService
	Settings *service.SettingsService
	Watcher  *service.Watcher
}

// Build opens the state database, discovers assets and wires the services.
func Build(cfg config.Config, logger *slog.Logger, emitter service.EventEmitter) (*Services, error) {
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := storage.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	cat, err := catalog.New(cfg.DataDir, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("discover assets: %w", err)
	}

	target, err := cfg.Export.ResolveTarget(secret.Default())
	if err != nil {
		db.Close()
		return nil, err
	}

	assets := service.NewAssetService(cat, etl.NewEngine(logger), cfg.PreviewRows, logger)
	exports := service.NewExportService(assets, storage.NewExportStore(db), emitter, service.ExportOptions{
		Target: target,
		Mode:   cfg.Export.Mode,
		Open:   dbclient.NewDestination,
	}, logger)

	logger.Info("app: services ready",
		"dataDir", cfg.DataDir,
		"assets", len(cat.Names()),
		"db", db.Path(),
		"export", string(cfg.Export.Driver))

	return &Services{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Catalog:  cat,
		Assets:   assets,
		Exports:  exports,
		Settings: service.NewSettingsService(storage.NewSettingsStore(db)),
		Watcher:  service.NewWatcher(cat, emitter, logger),
	}, nil
}

// StartBackground starts the file watcher, the rescan schedule and the
// export schedule as configured.
func (s *Services) StartBackground(ctx context.Context) error {
	if err := s.Watcher.Start(ctx, s.Config.Watch, s.Config.RescanSchedule); err != nil {
		return err
	}
	if s.Config.Export.Schedule != "" {
		if err := s.Exports.Schedule(ctx, s.Config.Export.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// Close stops background work, waits for running exports until ctx is
// done, then closes the state database.
func (s *Services) Close(ctx context.Context) {
	s.Watcher.Stop()
	s.Exports.Stop()
	s.Exports.WaitRunning(ctx)
	if err := s.DB.Close(); err != nil {
		s.Logger.Warn("app: close db", "err", err)
	}
}
