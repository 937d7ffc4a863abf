package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"mindmap/internal/config"
	"mindmap/internal/service"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zap.Logger

	core     *Core
	importer *service.ImportWatcher
	watcher  *changeWatcher

	mu              sync.Mutex
	activeMindmapID string
}

// New creates a new App.
func New(cfg *config.Config, logger *zap.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// wailsEmitter forwards service events to the frontend and marks the
// resulting database state as seen by the change watcher.
type wailsEmitter struct {
	app *App
}

func (e wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(e.app.ctx, event, data)
	switch event {
	case service.EventMindmapChanged, service.EventMindmapHistory, service.EventMindmapsChanged:
		if w := e.app.watcher; w != nil {
			w.Sync()
		}
	}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	emitter := wailsEmitter{app: a}

	core, err := OpenCore(a.cfg, a.logger, emitter)
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.core = core
	a.activeMindmapID = core.Settings.ActiveMindmap()

	size := core.Settings.LoadWindowSize()
	wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)

	a.watcher = newChangeWatcher(ctx, core.Store, core.Approvals, emitter, core.Mindmaps.Reload, a.logger.Named("watcher"))
	a.watcher.SetMindmap(a.activeMindmapID)
	a.watcher.Sync()
	a.watcher.Start()

	if err := core.Backups.Start(ctx, a.cfg.BackupSchedule); err != nil {
		a.logger.Error("backup schedule rejected", zap.Error(err))
	}

	if a.cfg.WatchFile != "" {
		a.importer = service.NewImportWatcher(core.Mindmaps, a.activeMindmap, emitter, a.logger)
		if err := a.importer.Watch(ctx, a.cfg.WatchFile); err != nil {
			a.logger.Error("watch flow file", zap.String("path", a.cfg.WatchFile), zap.Error(err))
		}
	}
}

// BeforeClose saves the window size. It never prevents closing.
func (a *App) BeforeClose(ctx context.Context) bool {
	if a.core != nil {
		w, h := wailsRuntime.WindowGetSize(ctx)
		if err := a.core.Settings.SaveWindowSize(w, h); err != nil {
			a.logger.Warn("save window size", zap.Error(err))
		}
	}
	return false
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if a.importer != nil {
		a.importer.Stop()
		a.importer.Wait(waitCtx)
	}
	if a.core == nil {
		return
	}
	a.core.Backups.Stop()
	a.core.Backups.WaitRunning(waitCtx)
	a.core.Close()
}

func (a *App) activeMindmap() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeMindmapID
}

// ============================================================
// Window
// ============================================================

// WindowSize returns the size saved on the last run.
func (a *App) WindowSize() service.WindowSize {
	return a.core.Settings.LoadWindowSize()
}

func (a *App) SaveWindowSize(width, height int) error {
	return a.core.Settings.SaveWindowSize(width, height)
}

// ============================================================
// MCP approvals (requested by the standalone MCP process)
// ============================================================

func (a *App) ApproveMCPAction(id string) error {
	return a.core.Approvals.Resolve(id, true)
}

func (a *App) RejectMCPAction(id string) error {
	return a.core.Approvals.Resolve(id, false)
}

// ============================================================
// Backups
// ============================================================

// RunBackup exports every mindmap now and returns the number of files written.
func (a *App) RunBackup() (int, error) {
	paths, err := a.core.Backups.RunNow(a.ctx)
	if err != nil {
		return 0, fmt.Errorf("backup: %w", err)
	}
	return len(paths), nil
}
