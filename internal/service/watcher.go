package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"assetdash/internal/catalog"
)

// DefaultDebounce is how long the watcher waits for file events to settle
// before rescanning.
const DefaultDebounce = 500 * time.Millisecond

// ─────────────────────────────────────────────────────────────
// Watcher: keeps the catalog in step with the data directory
// ─────────────────────────────────────────────────────────────

// Watcher refreshes the catalog when asset files change on disk, and on an
// optional cron schedule. Every refresh emits EventAssetsUpdated.
type Watcher struct {
	catalog  *catalog.Catalog
	emitter  EventEmitter
	logger   *slog.Logger
	Debounce time.Duration

	mu        sync.Mutex
	cancel    context.CancelFunc
	watcher   *fsnotify.Watcher
	cronSched *cron.Cron
	timer     *time.Timer
}

// NewWatcher creates a stopped Watcher.
func NewWatcher(cat *catalog.Catalog, emitter EventEmitter, logger *slog.Logger) *Watcher {
	return &Watcher{catalog: cat, emitter: emitter, logger: logger, Debounce: DefaultDebounce}
}

// Rescan refreshes the catalog now and notifies the frontend.
func (w *Watcher) Rescan(ctx context.Context) error {
	if err := w.catalog.Refresh(); err != nil {
		return fmt.Errorf("rescan: %w", err)
	}
	w.emitter.Emit(ctx, EventAssetsUpdated, w.catalog.Names())
	return nil
}

// Start tears down any previous watchers and starts new ones: an fsnotify
// watch over every data directory when watch is set, and a cron rescan when
// schedule is not empty.
func (w *Watcher) Start(ctx context.Context, watch bool, schedule string) error {
	w.Stop()

	w.mu.Lock()
	defer w.mu.Unlock()

	if schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(schedule, func() {
			if err := w.Rescan(ctx); err != nil {
				w.logger.Warn("watcher cron: rescan failed", "err", err)
			}
		}); err != nil {
			return fmt.Errorf("rescan schedule %q: %w", schedule, err)
		}
		c.Start()
		w.cronSched = c
		w.logger.Info("watcher cron: scheduled", "expr", schedule)
	}

	if !watch {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dirs, err := w.catalog.Dirs()
	if err != nil {
		fw.Close()
		return err
	}
	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			w.logger.Warn("watcher: failed to watch dir", "dir", d, "err", err)
		}
	}
	w.watcher = fw

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.loop(watchCtx, fw)

	w.logger.Info("watcher: watching", "root", w.catalog.Root(), "dirs", len(dirs))
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !w.relevant(fw, event) {
				continue
			}
			w.schedule(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher: error", "err", err)
		}
	}
}

// relevant reports whether event can change the asset list. New
// directories are added to the watch as they appear.
func (w *Watcher) relevant(fw *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.Add(event.Name); err != nil {
				w.logger.Warn("watcher: failed to watch dir", "dir", event.Name, "err", err)
			}
			return true
		}
	}
	if event.Has(fsnotify.Chmod) {
		return false
	}
	// Removed directories have no extension either.
	return strings.HasSuffix(event.Name, catalog.Ext) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// schedule debounces a rescan.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := w.Rescan(ctx); err != nil {
			w.logger.Warn("watcher: rescan failed", "err", err)
			return
		}
		w.logger.Debug("watcher: rescanned")
	})
}

// Stop tears down all watchers and schedulers.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
	}
	if w.cronSched != nil {
		w.cronSched.Stop()
		w.cronSched = nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
