package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mindmap/internal/domain"
)

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last edit of a mindmap. Does nothing at the oldest state."),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone edit. Does nothing at the newest state."),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
	), s.handleRedo)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveMindmapID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	st, err := s.mindmaps.Undo(ctx, id)
	if err != nil {
		return nil, err
	}
	return textResult(historySummary("Undo", st)), nil
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveMindmapID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	st, err := s.mindmaps.Redo(ctx, id)
	if err != nil {
		return nil, err
	}
	return textResult(historySummary("Redo", st)), nil
}

func historySummary(op string, st *domain.MindmapState) string {
	return fmt.Sprintf("%s: state %d of %d, %d nodes, %d edges (canUndo=%t canRedo=%t)",
		op, st.HistoryIndex+1, st.HistoryLen, len(st.Nodes), len(st.Edges), st.CanUndo, st.CanRedo)
}
