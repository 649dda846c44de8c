package app

import (
	"context"
	"sync"
	"time"

	"assetdash/internal/domain"
	"assetdash/internal/service"
)

// runLister is the part of ExportService the watcher reads.
type runLister interface {
	ListRuns(asset string, limit int) ([]domain.ExportRun, error)
}

// runWatcher polls the export run log for runs finished by another process
// (e.g. the standalone MCP server) and forwards them as export:finished
// events so the frontend refreshes.
type runWatcher struct {
	ctx      context.Context
	runs     runLister
	emitter  service.EventEmitter
	interval time.Duration

	mu     sync.Mutex
	primed bool
	last   string // fingerprint of the newest finished run
	stopCh chan struct{}
}

func newRunWatcher(ctx context.Context, runs runLister, emitter service.EventEmitter, interval time.Duration) *runWatcher {
	return &runWatcher{ctx: ctx, runs: runs, emitter: emitter, interval: interval}
}

// Start begins the polling loop. Should be called once on app startup.
func (w *runWatcher) Start() {
	w.check() // baseline; nothing is emitted for runs older than startup
	w.stopCh = make(chan struct{})
	go w.pollLoop(w.stopCh)
}

// Stop terminates the polling loop.
func (w *runWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *runWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

// check emits the newest finished run when it differs from the last one
// seen. The first check only records a baseline. Runs finished by this
// process are emitted a second time, which the frontend treats as a refresh.
func (w *runWatcher) check() {
	runs, err := w.runs.ListRuns("", 1)
	if err != nil {
		return
	}
	var (
		run         domain.ExportRun
		fingerprint string
	)
	if len(runs) > 0 {
		run = runs[0]
		if run.Status == domain.ExportRunning {
			return
		}
		fingerprint = run.ID + ":" + string(run.Status)
	}

	w.mu.Lock()
	changed := w.primed && fingerprint != w.last
	w.primed = true
	w.last = fingerprint
	w.mu.Unlock()

	if changed {
		w.emitter.Emit(w.ctx, service.EventExportFinished, run)
	}
}
