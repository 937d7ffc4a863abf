package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindmap/internal/domain"
	"mindmap/internal/flow"
	"mindmap/internal/history"
	"mindmap/internal/layout"
)

// ─────────────────────────────────────────────────────────────
// Mindmap Service: canvas edits, undo/redo and generation
// ─────────────────────────────────────────────────────────────
//
// Every structural edit follows the same path: read the canvas, apply the
// change, persist it with ReplaceElements, record a snapshot in the
// mindmap's history.Store and mirror that snapshot to the history log.
// One mutex serialises all of it, so Wails bindings and MCP tool calls
// never interleave.

// Default edge look, matching the web UI's connect handler.
const (
	defaultEdgeType   = "smoothstep"
	defaultEdgeStroke = "hsl(var(--primary))"
	defaultEdgeWidth  = 2
)

// NodeInput describes a node to add. Zero Position means "find a free slot".
type NodeInput struct {
	ID       string           `json:"id,omitempty"`
	Type     domain.NodeType  `json:"type"`
	Position *domain.Position `json:"position,omitempty"`
	Data     domain.NodeData  `json:"data"`
}

// EdgeInput describes a connection to add.
type EdgeInput struct {
	Source       string            `json:"source"`
	Target       string            `json:"target"`
	SourceHandle string            `json:"sourceHandle,omitempty"`
	TargetHandle string            `json:"targetHandle,omitempty"`
	Label        string            `json:"label,omitempty"`
	Style        *domain.EdgeStyle `json:"style,omitempty"`
}

// EdgePatch updates the presentation of an edge. Nil fields are left alone.
type EdgePatch struct {
	Label    *string           `json:"label,omitempty"`
	Animated *bool             `json:"animated,omitempty"`
	Type     *string           `json:"type,omitempty"`
	Style    *domain.EdgeStyle `json:"style,omitempty"`
}

// GenerateResult is returned by Generate and Relayout.
type GenerateResult struct {
	State *domain.MindmapState `json:"state"`
	// Layout is "hierarchical" or "radial".
	Layout  string   `json:"layout"`
	Dropped []string `json:"dropped,omitempty"`
}

// MindmapService manages mindmaps, their canvases and undo history.
type MindmapService struct {
	mu        sync.Mutex
	mindmaps  domain.MindmapStore
	elements  domain.ElementStore
	logs      domain.HistoryLogStore
	engine    *layout.Engine
	emitter   EventEmitter
	logger    *zap.Logger
	histories map[string]*history.Store
	now       func() time.Time
}

// NewMindmapService creates a MindmapService.
func NewMindmapService(
	mindmaps domain.MindmapStore,
	elements domain.ElementStore,
	logs domain.HistoryLogStore,
	engine *layout.Engine,
	emitter EventEmitter,
	logger *zap.Logger,
) *MindmapService {
	if engine == nil {
		engine = layout.New(layout.DefaultConfig())
	}
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MindmapService{
		mindmaps:  mindmaps,
		elements:  elements,
		logs:      logs,
		engine:    engine,
		emitter:   emitter,
		logger:    logger,
		histories: make(map[string]*history.Store),
		now:       time.Now,
	}
}

// ── Mindmaps ───────────────────────────────────────────────

func (s *MindmapService) ListMindmaps() ([]domain.Mindmap, error) {
	list, err := s.mindmaps.ListMindmaps()
	if err != nil {
		return nil, fmt.Errorf("list mindmaps: %w", err)
	}
	if list == nil {
		list = []domain.Mindmap{}
	}
	return list, nil
}

// CreateMindmap creates an empty mindmap. The empty canvas is recorded as
// the first snapshot so the first edit can be undone.
func (s *MindmapService) CreateMindmap(ctx context.Context, name string) (*domain.Mindmap, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled mindmap"
	}
	m := &domain.Mindmap{ID: uuid.New().String(), Name: name, ViewportZoom: 1}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mindmaps.CreateMindmap(m); err != nil {
		return nil, fmt.Errorf("create mindmap: %w", err)
	}
	h := history.New()
	h.SetElements(nil, nil)
	if err := s.logs.PushSnapshot(m.ID, 0, domain.Snapshot{Nodes: h.Nodes(), Edges: h.Edges()}); err != nil {
		return nil, fmt.Errorf("create mindmap history: %w", err)
	}
	s.histories[m.ID] = h

	s.logger.Info("mindmap created", zap.String("mindmap", m.ID), zap.String("name", name))
	s.emitter.Emit(ctx, EventMindmapsChanged, m)
	return m, nil
}

func (s *MindmapService) RenameMindmap(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("rename mindmap: name is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.mindmaps.GetMindmap(id)
	if err != nil {
		return err
	}
	m.Name = name
	if err := s.mindmaps.UpdateMindmap(m); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventMindmapsChanged, m)
	return nil
}

func (s *MindmapService) DeleteMindmap(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mindmaps.DeleteMindmap(id); err != nil {
		return fmt.Errorf("delete mindmap: %w", err)
	}
	delete(s.histories, id)
	s.logger.Info("mindmap deleted", zap.String("mindmap", id))
	s.emitter.Emit(ctx, EventMindmapsChanged, map[string]string{"deleted": id})
	return nil
}

// UpdateViewport stores the canvas pan/zoom. It is not an undoable edit.
func (s *MindmapService) UpdateViewport(id string, x, y, zoom float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.mindmaps.GetMindmap(id)
	if err != nil {
		return err
	}
	m.ViewportX, m.ViewportY, m.ViewportZoom = x, y, zoom
	return s.mindmaps.UpdateMindmap(m)
}

// GetState returns everything needed to render a mindmap.
func (s *MindmapService) GetState(id string) (*domain.MindmapState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.historyFor(id)
	if err != nil {
		return nil, err
	}
	return s.state(id, h)
}

// Reload drops the cached history of a mindmap so the next access reads
// it back from the store. Used when another process changed it.
func (s *MindmapService) Reload(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, id)
}

// ── Structural edits ───────────────────────────────────────

// AddNode adds a node. Without a position it is placed in the first free
// grid slot.
func (s *MindmapService) AddNode(ctx context.Context, mindmapID string, in NodeInput) (*domain.Node, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("add node: unknown node type %q", in.Type)
	}
	var added domain.Node
	_, err := s.mutate(ctx, mindmapID, "add-node", func(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		n := domain.Node{ID: in.ID, Type: in.Type, Data: in.Data}
		if n.ID == "" {
			n.ID = fmt.Sprintf("%s-%s", in.Type, uuid.New().String()[:8])
		}
		if indexOfNode(nodes, n.ID) >= 0 {
			return nil, nil, fmt.Errorf("add node: id %q already exists", n.ID)
		}
		n.Data.Type = in.Type
		if n.Data.Label == "" {
			n.Data.Label = "New " + strings.ReplaceAll(string(in.Type), "-", " ")
		}
		if in.Position != nil {
			n.Position = *in.Position
		} else {
			w, h := domain.DefaultSize(in.Type)
			n.Position = s.engine.NextPosition(nodes, w, h)
		}
		s.touch(&n)
		added = n
		return append(nodes, n), edges, nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateNodeData replaces a node's payload. The node type is kept.
func (s *MindmapService) UpdateNodeData(ctx context.Context, mindmapID, nodeID string, data domain.NodeData) (*domain.MindmapState, error) {
	return s.mutate(ctx, mindmapID, "update-node", func(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		i := indexOfNode(nodes, nodeID)
		if i < 0 {
			return nil, nil, fmt.Errorf("update node %s: %w", nodeID, domain.ErrUnknownNode)
		}
		data.Type = nodes[i].Type
		nodes[i].Data = data
		s.touch(&nodes[i])
		return nodes, edges, nil
	})
}

func (s *MindmapService) MoveNode(ctx context.Context, mindmapID, nodeID string, pos domain.Position) (*domain.MindmapState, error) {
	return s.mutate(ctx, mindmapID, "move-node", func(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		i := indexOfNode(nodes, nodeID)
		if i < 0 {
			return nil, nil, fmt.Errorf("move node %s: %w", nodeID, domain.ErrUnknownNode)
		}
		nodes[i].Position = pos
		return nodes, edges, nil
	})
}

// RemoveNode deletes a node and every edge touching it.
func (s *MindmapService) RemoveNode(ctx context.Context, mindmapID, nodeID string) (*domain.MindmapState, error) {
	return s.mutate(ctx, mindmapID, "remove-node", func(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		i := indexOfNode(nodes, nodeID)
		if i < 0 {
			return nil, nil, fmt.Errorf("remove node %s: %w", nodeID, domain.ErrUnknownNode)
		}
		nodes = append(nodes[:i], nodes[i+1:]...)
		kept := edges[:0]
		for _, e := range edges {
			if e.Source != nodeID && e.Target != nodeID {
				kept = append(kept, e)
			}
		}
		return nodes, kept, nil
	})
}

// Connect adds an animated edge between two existing nodes.
func (s *MindmapService) Connect(ctx context.Context, mindmapID string, in EdgeInput) (*domain.Edge, error) {
	if in.Source == in.Target {
		return nil, errors.New("connect: source and target are the same node")
	}
	var added domain.Edge
	_, err := s.mutate(ctx, mindmapID, "connect", func(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		if indexOfNode(nodes, in.Source) < 0 || indexOfNode(nodes, in.Target) < 0 {
			return nil, nil, fmt.Errorf("connect %s -> %s: %w", in.Source, in.Target, domain.ErrUnknownNode)
		}
		for _, e := range edges {
			if e.Source == in.Source && e.Target == in.Target &&
				e.SourceHandle == in.SourceHandle && e.TargetHandle == in.TargetHandle {
				return nil, nil, fmt.Errorf("connect %s -> %s: %w", in.Source, in.Target, domain.ErrDuplicateEdge)
			}
		}
		style := in.Style
		if style == nil {
			style = &domain.EdgeStyle{Stroke: defaultEdgeStroke, StrokeWidth: defaultEdgeWidth}
		}
		added = domain.Edge{
			ID:           fmt.Sprintf("edge-%s%s-%s%s", in.Source, in.SourceHandle, in.Target, in.TargetHandle),
			Source:       in.Source,
			Target:       in.Target,
			SourceHandle: in.SourceHandle,
			TargetHandle: in.TargetHandle,
			Type:         defaultEdgeType,
			Label:        in.Label,
			Animated:     true,
			Style:        style,
		}
		return nodes, append(edges, added), nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func (s *MindmapService) Disconnect(ctx context.Context, mindmapID, edgeID string) (*domain.MindmapState, error) {
	return s.mutate(ctx, mindmapID, "disconnect", func(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		i := indexOfEdge(edges, edgeID)
		if i < 0 {
			return nil, nil, fmt.Errorf("disconnect %s: %w", edgeID, domain.ErrNotFound)
		}
		return nodes, append(edges[:i], edges[i+1:]...), nil
	})
}

func (s *MindmapService) UpdateEdge(ctx context.Context, mindmapID, edgeID string, patch EdgePatch) (*domain.MindmapState, error) {
	return s.mutate(ctx, mindmapID, "update-edge", func(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		i := indexOfEdge(edges, edgeID)
		if i < 0 {
			return nil, nil, fmt.Errorf("update edge %s: %w", edgeID, domain.ErrNotFound)
		}
		if patch.Label != nil {
			edges[i].Label = *patch.Label
		}
		if patch.Animated != nil {
			edges[i].Animated = *patch.Animated
		}
		if patch.Type != nil {
			edges[i].Type = *patch.Type
		}
		if patch.Style != nil {
			st := *patch.Style
			edges[i].Style = &st
		}
		return nodes, edges, nil
	})
}

// ClearCanvas removes every node and edge. It can be undone.
func (s *MindmapService) ClearCanvas(ctx context.Context, mindmapID string) (*domain.MindmapState, error) {
	return s.mutate(ctx, mindmapID, "clear", func([]domain.Node, []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		return []domain.Node{}, []domain.Edge{}, nil
	})
}

// SetElements replaces the canvas with what the web UI currently shows.
func (s *MindmapService) SetElements(ctx context.Context, mindmapID string, nodes []domain.Node, edges []domain.Edge) (*domain.MindmapState, error) {
	f := domain.Flow{Nodes: domain.CloneNodes(nodes), Edges: domain.CloneEdges(edges)}
	flow.Normalize(&f)
	if err := flow.Validate(f); err != nil {
		return nil, fmt.Errorf("set elements: %w", err)
	}
	return s.mutate(ctx, mindmapID, "set-elements", func([]domain.Node, []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		return f.Nodes, f.Edges, nil
	})
}

// ImportFlow replaces the canvas with a decoded flow document.
func (s *MindmapService) ImportFlow(ctx context.Context, mindmapID string, f domain.Flow) (*domain.MindmapState, error) {
	flow.Normalize(&f)
	if err := flow.Validate(f); err != nil {
		return nil, fmt.Errorf("import flow: %w", err)
	}
	f = domain.Flow{Nodes: domain.CloneNodes(f.Nodes), Edges: domain.CloneEdges(f.Edges)}
	return s.mutate(ctx, mindmapID, "import", func([]domain.Node, []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		return f.Nodes, f.Edges, nil
	})
}

// ExportFlow returns the current canvas as a flow document.
func (s *MindmapService) ExportFlow(mindmapID string) (domain.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.mindmaps.GetMindmap(mindmapID); err != nil {
		return domain.Flow{}, err
	}
	nodes, edges, err := s.load(mindmapID)
	if err != nil {
		return domain.Flow{}, err
	}
	return domain.Flow{Nodes: nodes, Edges: edges}, nil
}

// ── Generation ─────────────────────────────────────────────

// Generate positions generated nodes and replaces the canvas with them.
// Nodes of unknown type are dropped along with any edge touching them, and
// a repeated edge is kept once.
func (s *MindmapService) Generate(ctx context.Context, mindmapID string, f domain.Flow) (*GenerateResult, error) {
	flow.Normalize(&f)
	res := s.engine.Compute(f.Nodes, f.Edges)
	nodes := res.Nodes()
	edges := keepConnected(nodes, f.Edges)

	if err := flow.Validate(domain.Flow{Nodes: nodes, Edges: edges}); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if dropped := res.Dropped(); len(dropped) > 0 {
		s.logger.Warn("generated nodes with unknown type dropped",
			zap.String("mindmap", mindmapID), zap.Strings("nodes", dropped))
	}

	state, err := s.mutate(ctx, mindmapID, "generate", func([]domain.Node, []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		return nodes, edges, nil
	})
	if err != nil {
		return nil, err
	}
	return &GenerateResult{State: state, Layout: layoutName(res), Dropped: res.Dropped()}, nil
}

// GenerateFromText extracts a flow from model output, then runs Generate.
func (s *MindmapService) GenerateFromText(ctx context.Context, mindmapID, text string) (*GenerateResult, error) {
	f, err := flow.ExtractGenerated(text)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return s.Generate(ctx, mindmapID, f)
}

// Relayout re-runs the layout over the current canvas, keeping its edges.
func (s *MindmapService) Relayout(ctx context.Context, mindmapID string) (*GenerateResult, error) {
	var res layout.Result
	state, err := s.mutate(ctx, mindmapID, "relayout", func(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge, error) {
		res = s.engine.Compute(nodes, edges)
		positioned := res.Nodes()
		return positioned, keepConnected(positioned, edges), nil
	})
	if err != nil {
		return nil, err
	}
	return &GenerateResult{State: state, Layout: layoutName(res), Dropped: res.Dropped()}, nil
}

func layoutName(r layout.Result) string {
	switch r.(type) {
	case *layout.RadialResult:
		return "radial"
	default:
		return "hierarchical"
	}
}

// ── Undo / Redo ────────────────────────────────────────────

func (s *MindmapService) Undo(ctx context.Context, mindmapID string) (*domain.MindmapState, error) {
	return s.step(ctx, mindmapID, "undo", (*history.Store).Undo)
}

func (s *MindmapService) Redo(ctx context.Context, mindmapID string) (*domain.MindmapState, error) {
	return s.step(ctx, mindmapID, "redo", (*history.Store).Redo)
}

// step moves the history cursor and writes the restored snapshot back to
// the element store. At a boundary nothing is written.
func (s *MindmapService) step(ctx context.Context, mindmapID, reason string, move func(*history.Store) bool) (*domain.MindmapState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.historyFor(mindmapID)
	if err != nil {
		return nil, err
	}
	prevNodes, prevEdges := h.Nodes(), h.Edges()
	if !move(h) {
		return s.state(mindmapID, h)
	}
	if err := s.elements.ReplaceElements(mindmapID, h.Nodes(), h.Edges()); err != nil {
		delete(s.histories, mindmapID)
		return nil, fmt.Errorf("%s: %w", reason, err)
	}
	if err := s.logs.SetCursor(mindmapID, h.CurrentIndex()); err != nil {
		s.rollback(mindmapID, prevNodes, prevEdges)
		return nil, fmt.Errorf("%s: %w", reason, err)
	}

	st, err := s.state(mindmapID, h)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("history moved", zap.String("mindmap", mindmapID), zap.String("op", reason), zap.Int("index", h.CurrentIndex()))
	s.emitter.Emit(ctx, EventMindmapHistory, s.event(mindmapID, reason, h))
	return st, nil
}

// ── Internals ──────────────────────────────────────────────

type editFunc func(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge, error)

func (s *MindmapService) mutate(ctx context.Context, mindmapID, reason string, fn editFunc) (*domain.MindmapState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.historyFor(mindmapID)
	if err != nil {
		return nil, err
	}
	nodes, edges, err := s.load(mindmapID)
	if err != nil {
		return nil, err
	}
	prevNodes, prevEdges := domain.CloneNodes(nodes), domain.CloneEdges(edges)
	nodes, edges, err = fn(nodes, edges)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []domain.Node{}
	}
	if edges == nil {
		edges = []domain.Edge{}
	}

	if err := s.elements.ReplaceElements(mindmapID, nodes, edges); err != nil {
		return nil, fmt.Errorf("%s: %w", reason, err)
	}
	h.SetElements(nodes, edges)
	snap := domain.Snapshot{Nodes: h.Nodes(), Edges: h.Edges()}
	if err := s.logs.PushSnapshot(mindmapID, h.CurrentIndex(), snap); err != nil {
		s.rollback(mindmapID, prevNodes, prevEdges)
		return nil, fmt.Errorf("%s: record history: %w", reason, err)
	}

	st, err := s.state(mindmapID, h)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("mindmap edited", zap.String("mindmap", mindmapID), zap.String("op", reason),
		zap.Int("nodes", len(nodes)), zap.Int("edges", len(edges)))
	s.emitter.Emit(ctx, EventMindmapChanged, s.event(mindmapID, reason, h))
	return st, nil
}

// historyFor returns the cached history, loading it from the log store on
// first use. A mindmap with elements but no log is seeded with its
// current canvas. Callers hold s.mu.
func (s *MindmapService) historyFor(mindmapID string) (*history.Store, error) {
	if h, ok := s.histories[mindmapID]; ok {
		return h, nil
	}
	if _, err := s.mindmaps.GetMindmap(mindmapID); err != nil {
		return nil, err
	}

	h := history.New()
	log, err := s.logs.LoadHistory(mindmapID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if err := h.Restore(log); err != nil {
		s.logger.Warn("stored history unusable, starting fresh", zap.String("mindmap", mindmapID), zap.Error(err))
		h = history.New()
	}
	if h.Len() == 0 {
		nodes, edges, err := s.load(mindmapID)
		if err != nil {
			return nil, err
		}
		h.SetElements(nodes, edges)
		if err := s.logs.PushSnapshot(mindmapID, 0, domain.Snapshot{Nodes: h.Nodes(), Edges: h.Edges()}); err != nil {
			return nil, fmt.Errorf("seed history: %w", err)
		}
	}
	s.histories[mindmapID] = h
	return h, nil
}

// rollback puts back the canvas that was current before a failed edit and
// drops the cached history so the next access reads the stored log again.
// Callers hold s.mu.
func (s *MindmapService) rollback(mindmapID string, nodes []domain.Node, edges []domain.Edge) {
	delete(s.histories, mindmapID)
	if err := s.elements.ReplaceElements(mindmapID, nodes, edges); err != nil {
		s.logger.Error("restore canvas after failed edit", zap.String("mindmap", mindmapID), zap.Error(err))
	}
}

func (s *MindmapService) load(mindmapID string) ([]domain.Node, []domain.Edge, error) {
	nodes, err := s.elements.ListNodes(mindmapID)
	if err != nil {
		return nil, nil, err
	}
	edges, err := s.elements.ListEdges(mindmapID)
	if err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

func (s *MindmapService) state(mindmapID string, h *history.Store) (*domain.MindmapState, error) {
	m, err := s.mindmaps.GetMindmap(mindmapID)
	if err != nil {
		return nil, err
	}
	return &domain.MindmapState{
		Mindmap:      *m,
		Nodes:        h.Nodes(),
		Edges:        h.Edges(),
		CanUndo:      h.CanUndo(),
		CanRedo:      h.CanRedo(),
		HistoryIndex: h.CurrentIndex(),
		HistoryLen:   h.Len(),
	}, nil
}

func (s *MindmapService) event(mindmapID, reason string, h *history.Store) MindmapEvent {
	return MindmapEvent{
		MindmapID:    mindmapID,
		Reason:       reason,
		CanUndo:      h.CanUndo(),
		CanRedo:      h.CanRedo(),
		HistoryIndex: h.CurrentIndex(),
		HistoryLen:   h.Len(),
	}
}

func (s *MindmapService) touch(n *domain.Node) {
	t := s.now().UTC()
	n.Data.LastEdited = &t
}

func indexOfNode(nodes []domain.Node, id string) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func indexOfEdge(edges []domain.Edge, id string) int {
	for i, e := range edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// keepConnected drops edges whose endpoints are not among nodes, and
// repeats of an edge id already seen.
func keepConnected(nodes []domain.Node, edges []domain.Edge) []domain.Edge {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	seen := make(map[string]bool, len(edges))
	out := make([]domain.Edge, 0, len(edges))
	for _, e := range edges {
		if !ids[e.Source] || !ids[e.Target] || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e.Clone())
	}
	return out
}
