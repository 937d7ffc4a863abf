package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"mindmap/internal/flow"
)

// ─────────────────────────────────────────────────────────────
// Import Watcher: re-imports a flow file when it changes on disk
// ─────────────────────────────────────────────────────────────
//
// Lets an external editor (or a script producing generated mindmaps) write
// a flow JSON file that is pushed onto the active mindmap's canvas. Each
// import is an ordinary undoable edit.

const importDebounce = 500 * time.Millisecond

// ImportWatcher watches one flow file.
type ImportWatcher struct {
	svc     *MindmapService
	active  func() string
	emitter EventEmitter
	logger  *zap.Logger

	jobs jobGuard

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	path    string
	timer   *time.Timer
}

// NewImportWatcher creates an ImportWatcher. active returns the id of the
// mindmap to import into; "" skips the import.
func NewImportWatcher(svc *MindmapService, active func() string, emitter EventEmitter, logger *zap.Logger) *ImportWatcher {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportWatcher{svc: svc, active: active, emitter: emitter, logger: logger.Named("import")}
}

// Watch starts watching path, replacing any previous watch.
func (w *ImportWatcher) Watch(ctx context.Context, path string) error {
	w.Stop()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file by rename.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir %q: %w", filepath.Dir(abs), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.watcher = watcher
	w.cancel = cancel
	w.path = abs
	w.mu.Unlock()

	go w.loop(watchCtx, watcher, abs)
	w.logger.Info("watching flow file", zap.String("path", abs))
	return nil
}

func (w *ImportWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher, abs string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != abs {
				continue
			}
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(importDebounce, func() {
				if err := w.ImportNow(ctx); err != nil {
					w.logger.Warn("import failed", zap.String("path", abs), zap.Error(err))
				}
			})
			w.mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// ImportNow reads the watched file and replaces the active canvas with it.
// It returns ErrJobRunning while another import into the same mindmap is
// in progress.
func (w *ImportWatcher) ImportNow(ctx context.Context) error {
	w.mu.Lock()
	path := w.path
	w.mu.Unlock()
	if path == "" {
		return fmt.Errorf("no file watched")
	}
	id := w.active()
	if id == "" {
		return nil
	}
	release, ok := w.jobs.acquire(id)
	if !ok {
		return fmt.Errorf("import into %s: %w", id, ErrJobRunning)
	}
	defer release()

	f, err := flow.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := w.svc.ImportFlow(ctx, id, f); err != nil {
		return err
	}
	w.logger.Info("flow imported", zap.String("mindmap", id), zap.Int("nodes", len(f.Nodes)))
	w.emitter.Emit(ctx, EventMindmapImported, MindmapEvent{MindmapID: id, Reason: "import"})
	return nil
}

// Wait blocks until running imports finish or ctx is done.
func (w *ImportWatcher) Wait(ctx context.Context) {
	w.jobs.wait(ctx)
}

// Stop ends the current watch.
func (w *ImportWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
	}
	w.path = ""
}
