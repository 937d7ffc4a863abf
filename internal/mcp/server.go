package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"mindmap/internal/service"
	"mindmap/internal/storage"
)

// Server is the MCP server for the mindmap app.
// It exposes tools, resources, and prompts so AI agents can build and edit mindmaps.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	logger   *zap.Logger

	// Services (injected from app layer)
	mindmaps *service.MindmapService
	settings *service.SettingsService

	// Active mindmap context (set by set_active_mindmap tool)
	mu              sync.Mutex
	activeMindmapID string
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter  EventEmitter
	Mindmaps *service.MindmapService
	Settings *service.SettingsService
	Logger   *zap.Logger
	// When set, approvals go through the mcp_approvals table (standalone mode)
	Approvals *storage.ApprovalStore
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	emitter := deps.Emitter
	if emitter == nil {
		emitter = service.NopEmitter{}
	}
	approval := NewApprovalQueue(ctx, emitter)
	if deps.Approvals != nil {
		approval.SetStore(deps.Approvals)
	}
	s := &Server{
		emitter:  emitter,
		approval: approval,
		logger:   logger.Named("mcp"),
		mindmaps: deps.Mindmaps,
		settings: deps.Settings,
	}
	if s.settings != nil {
		s.activeMindmapID = s.settings.ActiveMindmap()
	}

	s.mcp = server.NewMCPServer(
		"mindmap-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerMindmapTools()
	s.registerNodeTools()
	s.registerGenerateTools()
	s.registerHistoryTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) setActive(id string) {
	s.mu.Lock()
	s.activeMindmapID = id
	s.mu.Unlock()
	if s.settings != nil {
		if err := s.settings.SetActiveMindmap(id); err != nil {
			s.logger.Warn("persist active mindmap", zap.Error(err))
		}
	}
}

func (s *Server) active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeMindmapID
}

// resolveMindmapID returns the mindmapId from tool args or falls back to the active mindmap.
func (s *Server) resolveMindmapID(args map[string]any) (string, error) {
	if id, ok := args["mindmapId"].(string); ok && id != "" {
		return id, nil
	}
	if id := s.active(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no mindmapId provided and no active mindmap set (use set_active_mindmap first)")
}
