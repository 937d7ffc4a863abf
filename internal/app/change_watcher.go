package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindmap/internal/service"
	"mindmap/internal/storage"
)

// Events emitted by the watcher.
const (
	EventExternalChange   = "mindmap:external-change"
	EventApprovalRequired = "mcp:approval-required"
	EventMCPActivity      = "mcp:activity"
)

type fingerprinter interface {
	Fingerprint(mindmapID string) (list, active string, err error)
}

// changeWatcher polls the database for changes to the open mindmap,
// detecting external modifications (e.g. from the MCP standalone process)
// and emitting events so the frontend auto-refreshes.
type changeWatcher struct {
	ctx       context.Context
	store     fingerprinter
	approvals *storage.ApprovalStore
	emitter   service.EventEmitter
	reload    func(mindmapID string)
	logger    *zap.Logger
	interval  time.Duration

	mu        sync.Mutex
	mindmapID string
	lastMap   string // history cursor + updated_at of the open mindmap
	lastList  string // mindmaps count + max updated_at (sidebar)
	stopCh    chan struct{}
	// Track emitted approval IDs to avoid infinite re-emission
	emittedApprovals map[string]bool
}

func newChangeWatcher(ctx context.Context, store fingerprinter, approvals *storage.ApprovalStore,
	emitter service.EventEmitter, reload func(string), logger *zap.Logger) *changeWatcher {
	return &changeWatcher{
		ctx:              ctx,
		store:            store,
		approvals:        approvals,
		emitter:          emitter,
		reload:           reload,
		logger:           logger,
		interval:         2 * time.Second,
		emittedApprovals: map[string]bool{},
	}
}

// SetMindmap updates the watched mindmap. Called when the user opens one.
func (w *changeWatcher) SetMindmap(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mindmapID = id
	w.lastMap = ""
}

// Sync records the current fingerprints without emitting anything. Called
// after the app's own writes so they are not reported as external.
func (w *changeWatcher) Sync() {
	w.mu.Lock()
	id := w.mindmapID
	w.mu.Unlock()

	list, active, err := w.store.Fingerprint(id)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.lastList = list
	if w.mindmapID == id {
		w.lastMap = active
	}
	w.mu.Unlock()
}

// Start begins the polling loop. Should be called once on app startup.
func (w *changeWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop.
func (w *changeWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *changeWatcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	stop := w.stopCh
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

func (w *changeWatcher) check() {
	w.mu.Lock()
	id := w.mindmapID
	w.mu.Unlock()

	list, active, err := w.store.Fingerprint(id)
	if err != nil {
		w.logger.Debug("fingerprint failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	if w.mindmapID != id {
		// switched while querying
		w.mu.Unlock()
		return
	}
	mapChanged := id != "" && w.lastMap != "" && active != w.lastMap
	listChanged := w.lastList != "" && list != w.lastList
	w.lastMap = active
	w.lastList = list
	w.mu.Unlock()

	if mapChanged {
		w.reload(id)
		w.emitter.Emit(w.ctx, EventExternalChange, service.MindmapEvent{MindmapID: id, Reason: "external"})
	}
	if listChanged {
		w.emitter.Emit(w.ctx, service.EventMindmapsChanged, nil)
	}

	w.checkApprovals(id)
}

// checkApprovals forwards approvals requested by a standalone MCP process.
func (w *changeWatcher) checkApprovals(mindmapID string) {
	if w.approvals == nil {
		return
	}
	pending, err := w.approvals.ListPending()
	if err != nil {
		return
	}

	live := make(map[string]bool, len(pending))
	for _, a := range pending {
		live[a.ID] = true
		w.mu.Lock()
		alreadySent := w.emittedApprovals[a.ID]
		w.emittedApprovals[a.ID] = true
		w.mu.Unlock()
		if alreadySent {
			continue
		}
		w.emitter.Emit(w.ctx, EventMCPActivity, map[string]any{"changes": 1, "mindmapId": mindmapID})
		w.emitter.Emit(w.ctx, EventApprovalRequired, map[string]string{
			"id":          a.ID,
			"tool":        a.Tool,
			"description": a.Description,
			"createdAt":   a.CreatedAt.Format(time.RFC3339),
			"metadata":    a.Metadata,
		})
	}

	// Forget resolved/deleted approvals (standalone MCP deletes after reading)
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !live[id] {
			delete(w.emittedApprovals, id)
		}
	}
	w.mu.Unlock()
}
