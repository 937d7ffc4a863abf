package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"mindmap/internal/flow"
)

func (s *Server) registerResources() {
	// ── mindmap://mindmaps ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"mindmap://mindmaps",
		"All Mindmaps",
		mcp.WithMIMEType("application/json"),
	), s.handleMindmapsResource)

	// ── mindmap://{mindmapId}/flow ─────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"mindmap://{mindmapId}/flow",
			"Nodes and edges of a mindmap",
		),
		s.handleFlowResource,
	)
}

func (s *Server) handleMindmapsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.mindmaps.ListMindmaps()
	if err != nil {
		return nil, err
	}

	type mindmapSummary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	summaries := make([]mindmapSummary, 0, len(list))
	for _, m := range list {
		summaries = append(summaries, mindmapSummary{ID: m.ID, Name: m.Name})
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mindmap://mindmaps",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleFlowResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := mindmapIDFromURI(uri)
	if id == "" {
		return nil, fmt.Errorf("could not extract mindmapId from URI: %s", uri)
	}

	f, err := s.mindmaps.ExportFlow(id)
	if err != nil {
		return nil, err
	}
	data, err := flow.Encode(f, true)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// mindmapIDFromURI extracts the id from "mindmap://{id}/flow".
func mindmapIDFromURI(uri string) string {
	const prefix = "mindmap://"
	const suffix = "/flow"
	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
