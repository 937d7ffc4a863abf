package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerMindmapTools() {
	// ── list_mindmaps ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_mindmaps",
		mcp.WithDescription("List all mindmaps, most recently edited first"),
	), s.handleListMindmaps)

	// ── create_mindmap ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_mindmap",
		mcp.WithDescription("Create a new empty mindmap and make it active"),
		mcp.WithString("name",
			mcp.Description("Name of the new mindmap"),
			mcp.Required(),
		),
	), s.handleCreateMindmap)

	// ── set_active_mindmap ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_mindmap",
		mcp.WithDescription("Set the active mindmap for subsequent tool calls. Tools that accept mindmapId will default to this."),
		mcp.WithString("mindmapId",
			mcp.Description("ID of the mindmap to make active"),
			mcp.Required(),
		),
	), s.handleSetActiveMindmap)

	// ── get_mindmap ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_mindmap",
		mcp.WithDescription("Get the nodes, edges and undo/redo state of a mindmap"),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
	), s.handleGetMindmap)

	// ── rename_mindmap ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_mindmap",
		mcp.WithDescription("Rename a mindmap"),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
		mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
	), s.handleRenameMindmap)

	// ── delete_mindmap ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_mindmap",
		mcp.WithDescription("Delete a mindmap with all its nodes and history. Requires user approval."),
		mcp.WithString("mindmapId", mcp.Description("ID of the mindmap"), mcp.Required()),
	), s.handleDeleteMindmap)
}

func (s *Server) handleListMindmaps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.mindmaps.ListMindmaps()
	if err != nil {
		return nil, err
	}
	return jsonResult(list)
}

func (s *Server) handleCreateMindmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	m, err := s.mindmaps.CreateMindmap(ctx, name)
	if err != nil {
		return nil, err
	}
	// Auto-set as active mindmap
	s.setActive(m.ID)
	return jsonResult(m)
}

func (s *Server) handleSetActiveMindmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("mindmapId", "")
	if id == "" {
		return nil, fmt.Errorf("mindmapId is required")
	}
	if _, err := s.mindmaps.GetState(id); err != nil {
		return nil, err
	}
	s.setActive(id)
	return textResult(fmt.Sprintf("Active mindmap set to %s", id)), nil
}

func (s *Server) handleGetMindmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveMindmapID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	st, err := s.mindmaps.GetState(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(st)
}

func (s *Server) handleRenameMindmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveMindmapID(args)
	if err != nil {
		return nil, err
	}
	name := getString(args, "name")
	if err := s.mindmaps.RenameMindmap(ctx, id, name); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Mindmap %s renamed to %q", id, name)), nil
}

func (s *Server) handleDeleteMindmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("mindmapId", "")
	if id == "" {
		return nil, fmt.Errorf("mindmapId is required")
	}
	st, err := s.mindmaps.GetState(id)
	if err != nil {
		return nil, err
	}

	approved, err := s.approval.Request("delete_mindmap",
		fmt.Sprintf("Delete mindmap %q (%d nodes)", st.Mindmap.Name, len(st.Nodes)),
		fmt.Sprintf(`{"mindmapId":%q}`, id))
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if err := s.mindmaps.DeleteMindmap(ctx, id); err != nil {
		return nil, err
	}
	if s.active() == id {
		s.setActive("")
	}
	return textResult(fmt.Sprintf("Mindmap %s deleted", id)), nil
}
