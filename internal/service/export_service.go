package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"assetdash/internal/domain"
	"assetdash/internal/etl"
)

var (
	ErrExportRunning  = errors.New("export already running")
	ErrExportDisabled = errors.New("no export destination configured")
)

// DestinationFactory opens a destination for one export run.
// dbclient.NewDestination is the production implementation.
type DestinationFactory func(target domain.ExportTarget, logger *slog.Logger) (etl.Destination, error)

// ─────────────────────────────────────────────────────────────
// Export Service: writes asset record sets to a database
// ─────────────────────────────────────────────────────────────

// ExportService runs exports, keeps their history and fires scheduled runs.
// It is decoupled from the Wails App struct via the EventEmitter interface.
type ExportService struct {
	assets  *AssetService
	runs    domain.ExportRunStore
	emitter EventEmitter
	target  domain.ExportTarget
	mode    etl.SyncMode
	open    DestinationFactory
	logger  *slog.Logger

	guard runningGuard

	mu        sync.Mutex
	cronSched *cron.Cron
}

// ExportOptions configures an ExportService.
type ExportOptions struct {
	Target domain.ExportTarget
	Mode   etl.SyncMode
	Open   DestinationFactory
}

// NewExportService creates an ExportService ready for use.
func NewExportService(
	assets *AssetService,
	runs domain.ExportRunStore,
	emitter EventEmitter,
	opts ExportOptions,
	logger *slog.Logger,
) *ExportService {
	if opts.Mode == "" {
		opts.Mode = etl.SyncReplace
	}
	return &ExportService{
		assets:  assets,
		runs:    runs,
		emitter: emitter,
		target:  opts.Target,
		mode:    opts.Mode,
		open:    opts.Open,
		logger:  logger,
	}
}

// Enabled reports whether a destination is configured.
func (s *ExportService) Enabled() bool { return s.target.Driver != "" && s.open != nil }

// ExportAsset writes every record set of the named asset to the configured
// destination and records the run. A second export of the same asset while
// one is in flight fails with ErrExportRunning.
func (s *ExportService) ExportAsset(ctx context.Context, name string) (*domain.ExportRun, error) {
	if !s.Enabled() {
		return nil, ErrExportDisabled
	}
	if _, err := s.assets.Asset(name); err != nil {
		return nil, err
	}
	if !s.guard.TryLock(name) {
		return nil, fmt.Errorf("%w: %s", ErrExportRunning, name)
	}
	defer s.guard.Unlock(name)

	run := &domain.ExportRun{
		Asset:     name,
		Driver:    s.target.Driver,
		Mode:      string(s.mode),
		Status:    domain.ExportRunning,
		StartedAt: time.Now(),
	}
	if err := s.runs.CreateRun(run); err != nil {
		return nil, fmt.Errorf("create export run: %w", err)
	}
	s.emitter.Emit(ctx, EventExportStarted, map[string]string{"asset": name, "runId": run.ID})

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	result, runErr := s.export(runCtx, name)

	run.FinishedAt = time.Now()
	run.DurationMs = run.FinishedAt.Sub(run.StartedAt).Milliseconds()
	if result != nil {
		run.Tables = result.Tables
		run.RowsWritten = result.RowsWritten
	}
	run.Status = domain.ExportSuccess
	if runErr != nil {
		run.Status = domain.ExportFailed
		run.Error = runErr.Error()
	}
	if err := s.runs.UpdateRun(run); err != nil {
		s.logger.Error("export: failed to record run", "asset", name, "run", run.ID, "err", err)
	}

	s.emitter.Emit(ctx, EventExportFinished, run)
	if runErr != nil {
		s.logger.Warn("export: failed", "asset", name, "err", runErr)
		return run, runErr
	}
	s.logger.Info("export: done", "asset", name, "tables", run.Tables, "rows", run.RowsWritten)
	return run, nil
}

func (s *ExportService) export(ctx context.Context, name string) (*etl.ExportResult, error) {
	res, err := s.assets.Load(name)
	if err != nil {
		return nil, err
	}
	dest, err := s.open(s.target, s.logger)
	if err != nil {
		return nil, fmt.Errorf("open destination: %w", err)
	}
	defer dest.Close()

	return s.assets.engine.Export(ctx, dest, name, res.RecordSets, s.mode)
}

// ExportAll exports every asset in turn. Failures are logged and do not
// stop the remaining assets; the number of failed assets is returned.
func (s *ExportService) ExportAll(ctx context.Context) int {
	failed := 0
	for _, a := range s.assets.ListAssets() {
		if ctx.Err() != nil {
			return failed
		}
		if _, err := s.ExportAsset(ctx, a.Name); err != nil {
			failed++
		}
	}
	return failed
}

// ListRuns returns recent runs, newest first. An empty asset lists all.
func (s *ExportService) ListRuns(asset string, limit int) ([]domain.ExportRun, error) {
	return s.runs.ListRuns(asset, limit)
}

// ── Schedule ───────────────────────────────────────────────

// Schedule runs ExportAll on a cron expression until Stop. A previous
// schedule is replaced.
func (s *ExportService) Schedule(ctx context.Context, expr string) error {
	c := cron.New()
	if _, err := c.AddFunc(expr, func() {
		s.logger.Info("export cron: running")
		if n := s.ExportAll(ctx); n > 0 {
			s.logger.Warn("export cron: some assets failed", "failed", n)
		}
	}); err != nil {
		return fmt.Errorf("export schedule %q: %w", expr, err)
	}

	s.mu.Lock()
	if s.cronSched != nil {
		s.cronSched.Stop()
	}
	s.cronSched = c
	s.mu.Unlock()

	c.Start()
	s.logger.Info("export cron: scheduled", "expr", expr)
	return nil
}

// WaitRunning blocks until running exports finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *ExportService) WaitRunning(ctx context.Context) {
	s.guard.WaitAll(ctx)
}

// Stop tears down the schedule. It is safe to call more than once.
func (s *ExportService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
