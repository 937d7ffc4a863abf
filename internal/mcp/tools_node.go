package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mindmap/internal/domain"
	"mindmap/internal/service"
)

func (s *Server) registerNodeTools() {
	// ── add_node ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a node to a mindmap. Without x/y it is placed in the first free slot."),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
		mcp.WithString("type",
			mcp.Description("Node type"),
			mcp.Required(),
			mcp.Enum("chapter", "main-topic", "sub-topic"),
		),
		mcp.WithString("label", mcp.Description("Node title")),
		mcp.WithString("content", mcp.Description("Node body as HTML or markdown")),
		mcp.WithString("nodeId", mcp.Description("Node ID (optional, generated if omitted)")),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-placed if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-placed if omitted)")),
		mcp.WithString("parentId", mcp.Description("Connect the new node from this node (optional)")),
	), s.handleAddNode)

	// ── update_node ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_node",
		mcp.WithDescription("Update a node's label, content or colors. Omitted fields are kept."),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithString("label", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New body")),
		mcp.WithString("backgroundColor", mcp.Description("CSS color")),
		mcp.WithString("borderColor", mcp.Description("CSS color")),
	), s.handleUpdateNode)

	// ── move_node ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_node",
		mcp.WithDescription("Move a node to an absolute position"),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveNode)

	// ── delete_node ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Delete a node and its connections. Requires user approval."),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
	), s.handleDeleteNode)

	// ── connect_nodes ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("connect_nodes",
		mcp.WithDescription("Connect two nodes with an edge"),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
		mcp.WithString("source", mcp.Description("Source node ID"), mcp.Required()),
		mcp.WithString("target", mcp.Description("Target node ID"), mcp.Required()),
		mcp.WithString("label", mcp.Description("Edge label")),
	), s.handleConnectNodes)

	// ── disconnect_nodes ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("disconnect_nodes",
		mcp.WithDescription("Remove an edge"),
		mcp.WithString("mindmapId", mcp.Description("Mindmap ID (optional, defaults to active mindmap)")),
		mcp.WithString("edgeId", mcp.Description("Edge ID"), mcp.Required()),
	), s.handleDisconnectNodes)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleAddNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveMindmapID(args)
	if err != nil {
		return nil, err
	}
	nodeType := domain.NodeType(getString(args, "type"))
	if !nodeType.Valid() {
		return nil, fmt.Errorf("type must be one of chapter, main-topic, sub-topic")
	}

	in := service.NodeInput{
		ID:   getString(args, "nodeId"),
		Type: nodeType,
		Data: domain.NodeData{Label: getString(args, "label"), Content: getString(args, "content")},
	}
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if hasX && hasY {
		in.Position = &domain.Position{X: x, Y: y}
	}

	node, err := s.mindmaps.AddNode(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("add node: %w", err)
	}

	if parent := getString(args, "parentId"); parent != "" {
		if _, err := s.mindmaps.Connect(ctx, id, service.EdgeInput{Source: parent, Target: node.ID}); err != nil {
			return nil, fmt.Errorf("node %s added but not connected: %w", node.ID, err)
		}
	}
	return jsonResult(node)
}

func (s *Server) handleUpdateNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveMindmapID(args)
	if err != nil {
		return nil, err
	}
	nodeID := getString(args, "nodeId")
	node, err := s.findNode(id, nodeID)
	if err != nil {
		return nil, err
	}

	data := node.Data
	if v, ok := args["label"].(string); ok {
		data.Label = v
	}
	if v, ok := args["content"].(string); ok {
		data.Content = v
	}
	if v, ok := args["backgroundColor"].(string); ok {
		data.BackgroundColor = v
	}
	if v, ok := args["borderColor"].(string); ok {
		data.BorderColor = v
	}
	if _, err := s.mindmaps.UpdateNodeData(ctx, id, nodeID, data); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Node %s updated", nodeID)), nil
}

func (s *Server) handleMoveNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveMindmapID(args)
	if err != nil {
		return nil, err
	}
	nodeID := getString(args, "nodeId")
	pos := domain.Position{X: getFloat(args, "x", 0), Y: getFloat(args, "y", 0)}
	if _, err := s.mindmaps.MoveNode(ctx, id, nodeID, pos); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Node %s moved to (%.0f, %.0f)", nodeID, pos.X, pos.Y)), nil
}

func (s *Server) handleDeleteNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveMindmapID(args)
	if err != nil {
		return nil, err
	}
	node, err := s.findNode(id, getString(args, "nodeId"))
	if err != nil {
		return nil, err
	}

	// Require approval (with metadata for frontend highlight)
	meta := fmt.Sprintf(`{"nodeIds":[%q]}`, node.ID)
	approved, err := s.approval.Request("delete_node",
		fmt.Sprintf("Delete %s node %q", node.Type, node.Data.Label), meta)
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if _, err := s.mindmaps.RemoveNode(ctx, id, node.ID); err != nil {
		return nil, fmt.Errorf("delete node: %w", err)
	}
	return textResult(fmt.Sprintf("Node %s deleted", node.ID)), nil
}

func (s *Server) handleConnectNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveMindmapID(args)
	if err != nil {
		return nil, err
	}
	edge, err := s.mindmaps.Connect(ctx, id, service.EdgeInput{
		Source: getString(args, "source"),
		Target: getString(args, "target"),
		Label:  getString(args, "label"),
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(edge)
}

func (s *Server) handleDisconnectNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.resolveMindmapID(args)
	if err != nil {
		return nil, err
	}
	edgeID := getString(args, "edgeId")
	if _, err := s.mindmaps.Disconnect(ctx, id, edgeID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Edge %s removed", edgeID)), nil
}

// findNode retrieves a node and validates it exists.
func (s *Server) findNode(mindmapID, nodeID string) (*domain.Node, error) {
	if nodeID == "" {
		return nil, fmt.Errorf("nodeId is required")
	}
	st, err := s.mindmaps.GetState(mindmapID)
	if err != nil {
		return nil, err
	}
	for i := range st.Nodes {
		if st.Nodes[i].ID == nodeID {
			return &st.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("node %s: %w", nodeID, domain.ErrUnknownNode)
}
