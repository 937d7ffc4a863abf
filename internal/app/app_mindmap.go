package app

import (
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"mindmap/internal/domain"
	"mindmap/internal/flow"
	"mindmap/internal/service"
)

// ============================================================
// Mindmaps
// ============================================================

func (a *App) ListMindmaps() ([]domain.Mindmap, error) {
	return a.core.Mindmaps.ListMindmaps()
}

func (a *App) CreateMindmap(name string) (*domain.Mindmap, error) {
	m, err := a.core.Mindmaps.CreateMindmap(a.ctx, name)
	if err != nil {
		return nil, err
	}
	a.setActive(m.ID)
	return m, nil
}

// OpenMindmap makes id the active mindmap and returns its state.
func (a *App) OpenMindmap(id string) (*domain.MindmapState, error) {
	st, err := a.core.Mindmaps.GetState(id)
	if err != nil {
		return nil, err
	}
	a.setActive(id)
	return st, nil
}

// ActiveMindmapID returns the mindmap opened last, or "".
func (a *App) ActiveMindmapID() string {
	return a.activeMindmap()
}

func (a *App) GetMindmapState(id string) (*domain.MindmapState, error) {
	return a.core.Mindmaps.GetState(id)
}

func (a *App) RenameMindmap(id, name string) error {
	return a.core.Mindmaps.RenameMindmap(a.ctx, id, name)
}

func (a *App) DeleteMindmap(id string) error {
	if err := a.core.Mindmaps.DeleteMindmap(a.ctx, id); err != nil {
		return err
	}
	if a.activeMindmap() == id {
		a.setActive("")
	}
	return nil
}

func (a *App) UpdateViewport(id string, x, y, zoom float64) error {
	return a.core.Mindmaps.UpdateViewport(id, x, y, zoom)
}

func (a *App) setActive(id string) {
	a.mu.Lock()
	a.activeMindmapID = id
	a.mu.Unlock()
	if a.watcher != nil {
		a.watcher.SetMindmap(id)
		a.watcher.Sync()
	}
	a.core.Settings.SetActiveMindmap(id)
}

// ============================================================
// Canvas edits
// ============================================================

func (a *App) AddNode(mindmapID string, in service.NodeInput) (*domain.Node, error) {
	return a.core.Mindmaps.AddNode(a.ctx, mindmapID, in)
}

func (a *App) UpdateNodeData(mindmapID, nodeID string, data domain.NodeData) (*domain.MindmapState, error) {
	return a.core.Mindmaps.UpdateNodeData(a.ctx, mindmapID, nodeID, data)
}

func (a *App) MoveNode(mindmapID, nodeID string, x, y float64) (*domain.MindmapState, error) {
	return a.core.Mindmaps.MoveNode(a.ctx, mindmapID, nodeID, domain.Position{X: x, Y: y})
}

func (a *App) RemoveNode(mindmapID, nodeID string) (*domain.MindmapState, error) {
	return a.core.Mindmaps.RemoveNode(a.ctx, mindmapID, nodeID)
}

func (a *App) Connect(mindmapID string, in service.EdgeInput) (*domain.Edge, error) {
	return a.core.Mindmaps.Connect(a.ctx, mindmapID, in)
}

func (a *App) Disconnect(mindmapID, edgeID string) (*domain.MindmapState, error) {
	return a.core.Mindmaps.Disconnect(a.ctx, mindmapID, edgeID)
}

func (a *App) UpdateEdge(mindmapID, edgeID string, patch service.EdgePatch) (*domain.MindmapState, error) {
	return a.core.Mindmaps.UpdateEdge(a.ctx, mindmapID, edgeID, patch)
}

// SetElements records the canvas as the web UI shows it after a drag or
// inline edit.
func (a *App) SetElements(mindmapID string, nodes []domain.Node, edges []domain.Edge) (*domain.MindmapState, error) {
	return a.core.Mindmaps.SetElements(a.ctx, mindmapID, nodes, edges)
}

func (a *App) ClearCanvas(mindmapID string) (*domain.MindmapState, error) {
	return a.core.Mindmaps.ClearCanvas(a.ctx, mindmapID)
}

// ============================================================
// Undo / Redo
// ============================================================

func (a *App) Undo(mindmapID string) (*domain.MindmapState, error) {
	return a.core.Mindmaps.Undo(a.ctx, mindmapID)
}

func (a *App) Redo(mindmapID string) (*domain.MindmapState, error) {
	return a.core.Mindmaps.Redo(a.ctx, mindmapID)
}

// ============================================================
// Generation
// ============================================================

// GenerateMindmap places model output (JSON, optionally fenced) on the canvas.
func (a *App) GenerateMindmap(mindmapID, text string) (*service.GenerateResult, error) {
	return a.core.Mindmaps.GenerateFromText(a.ctx, mindmapID, text)
}

func (a *App) Relayout(mindmapID string) (*service.GenerateResult, error) {
	return a.core.Mindmaps.Relayout(a.ctx, mindmapID)
}

// ============================================================
// Files
// ============================================================

// ExportFlowFile asks for a destination and writes the mindmap as flow JSON.
// Returns "" when the dialog is cancelled.
func (a *App) ExportFlowFile(mindmapID string) (string, error) {
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Mindmap",
		DefaultFilename: "mindmap.json",
		Filters:         []wailsRuntime.FileFilter{{DisplayName: "Flow JSON", Pattern: "*.json"}},
	})
	if err != nil || path == "" {
		return "", err
	}
	f, err := a.core.Mindmaps.ExportFlow(mindmapID)
	if err != nil {
		return "", err
	}
	return path, flow.WriteFile(path, f)
}

// ImportFlowFile asks for a flow JSON file and replaces the canvas with it.
func (a *App) ImportFlowFile(mindmapID string) (*domain.MindmapState, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:   "Import Mindmap",
		Filters: []wailsRuntime.FileFilter{{DisplayName: "Flow JSON", Pattern: "*.json"}},
	})
	if err != nil || path == "" {
		return nil, err
	}
	f, err := flow.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.core.Mindmaps.ImportFlow(a.ctx, mindmapID, f)
}
