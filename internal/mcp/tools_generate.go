package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"mindmap/internal/flow"
)

func (s *Server) registerGenerateTools() {
	// ── generate_mindmap ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("generate_mindmap",
		mcp.WithDescription(`Replace a mindmap's canvas with generated nodes and edges. `+
			`Pass {"nodes":[...],"edges":[...]} as JSON, optionally wrapped in a code fence. `+
			`Positions are computed automatically; nodes with unknown types are dropped. Undoable.`),
		mcp.WithString("mindmap",
			mcp.Description("Flow JSON with nodes (id, type, data.label, data.content) and edges (source, target)"),
			mcp.Required(),
		),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
		mcp.WithString("name", mcp.Description("Create a new mindmap with this name instead of replacing one")),
	), s.handleGenerateMindmap)

	// ── relayout_mindmap ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("relayout_mindmap",
		mcp.WithDescription("Recompute all node positions from the current nodes and edges"),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
	), s.handleRelayoutMindmap)

	// ── clear_canvas ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_canvas",
		mcp.WithDescription("Remove every node and edge. Undoable, but requires user approval."),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
	), s.handleClearCanvas)

	// ── export_flow ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_flow",
		mcp.WithDescription("Export a mindmap as flow JSON (nodes and edges with positions)"),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
	), s.handleExportFlow)
}

func (s *Server) handleGenerateMindmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text := getString(args, "mindmap")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("mindmap is required")
	}
	f, err := flow.ExtractGenerated(text)
	if err != nil {
		return nil, err
	}

	var id string
	if name := getString(args, "name"); name != "" {
		m, err := s.mindmaps.CreateMindmap(ctx, name)
		if err != nil {
			return nil, err
		}
		id = m.ID
		s.setActive(id)
	} else if id, err = s.resolveMindmapID(args); err != nil {
		return nil, err
	}

	res, err := s.mindmaps.Generate(ctx, id, f)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{
		"mindmapId": id,
		"layout":    res.Layout,
		"nodes":     len(res.State.Nodes),
		"edges":     len(res.State.Edges),
		"dropped":   res.Dropped,
	})
}

func (s *Server) handleRelayoutMindmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveMindmapID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	res, err := s.mindmaps.Relayout(ctx, id)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Arranged %d nodes (%s layout)", len(res.State.Nodes), res.Layout)), nil
}

func (s *Server) handleClearCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveMindmapID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	st, err := s.mindmaps.GetState(id)
	if err != nil {
		return nil, err
	}

	approved, err := s.approval.Request("clear_canvas",
		fmt.Sprintf("Clear %d nodes and %d edges from %q", len(st.Nodes), len(st.Edges), st.Mindmap.Name),
		fmt.Sprintf(`{"mindmapId":%q}`, id))
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if _, err := s.mindmaps.ClearCanvas(ctx, id); err != nil {
		return nil, err
	}
	return textResult("Canvas cleared"), nil
}

func (s *Server) handleExportFlow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveMindmapID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	f, err := s.mindmaps.ExportFlow(id)
	if err != nil {
		return nil, err
	}
	data, err := flow.Encode(f, true)
	if err != nil {
		return nil, err
	}
	return textResult(string(data)), nil
}
