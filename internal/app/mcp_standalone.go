package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"assetdash/internal/config"
	"assetdash/internal/domain"
	mcpserver "assetdash/internal/mcp"
)

// noopEmitter is a no-op EventEmitter used without a Wails frontend.
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no
// GUI, until stdin closes or the process is interrupted.
func ServeMCP(cfg config.Config, logger *slog.Logger, version string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, err := Build(cfg, logger, noopEmitter{})
	if err != nil {
		return err
	}
	defer svc.Close(context.Background())

	if err := svc.StartBackground(ctx); err != nil {
		return err
	}

	srv := mcpserver.New(mcpserver.Deps{
		Assets:  svc.Assets,
		Exports: svc.Exports,
		Logger:  logger,
		Version: version,
	})
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// ExportOnce exports one asset and returns the recorded run. Background
// watchers are not started.
func ExportOnce(ctx context.Context, cfg config.Config, logger *slog.Logger, asset string) (*domain.ExportRun, error) {
	svc, err := Build(cfg, logger, noopEmitter{})
	if err != nil {
		return nil, err
	}
	defer svc.Close(ctx)
	return svc.Exports.ExportAsset(ctx, asset)
}
