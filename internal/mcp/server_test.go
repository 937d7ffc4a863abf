package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap/internal/domain"
	"mindmap/internal/layout"
	"mindmap/internal/service"
	"mindmap/internal/storage"
)

// approver answers approval requests as soon as they are emitted.
type approver struct {
	s       *Server
	approve bool
	seen    []string
}

func (a *approver) Emit(_ context.Context, event string, data any) {
	if event != "mcp:approval-required" {
		return
	}
	p := data.(PendingAction)
	a.seen = append(a.seen, p.Tool)
	if a.approve {
		a.s.Approve(p.ID)
	} else {
		a.s.Reject(p.ID)
	}
}

func newTestServer(t *testing.T, approve bool) (*Server, *approver, *storage.DB) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewMindmapService(
		storage.NewMindmapStore(db),
		storage.NewElementStore(db),
		storage.NewHistoryLogStore(db),
		layout.New(layout.DefaultConfig()),
		nil, nil,
	)
	settings := service.NewSettingsService(storage.NewSettingsStore(db), service.WindowSize{})

	a := &approver{approve: approve}
	s := New(context.Background(), Deps{Emitter: a, Mindmaps: svc, Settings: settings})
	a.s = s
	return s, a, db
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func createActive(t *testing.T, s *Server) string {
	t.Helper()
	res, err := s.handleCreateMindmap(context.Background(), call(map[string]any{"name": "Go"}))
	require.NoError(t, err)
	var m domain.Mindmap
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &m))
	return m.ID
}

const generated = "```json\n" + `{
  "nodes": [
    {"id": "c1", "type": "chapter", "data": {"label": "Go"}},
    {"id": "m1", "type": "main-topic", "data": {"label": "Types"}},
    {"id": "s1", "type": "sub-topic", "data": {"label": "Structs"}}
  ],
  "edges": [
    {"source": "c1", "target": "m1"},
    {"source": "m1", "target": "s1"}
  ]
}` + "\n```"

func TestCreateMindmap_SetsActive(t *testing.T) {
	s, _, _ := newTestServer(t, true)
	id := createActive(t, s)
	assert.Equal(t, id, s.active())
	assert.Equal(t, id, s.settings.ActiveMindmap())

	got, err := s.resolveMindmapID(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestResolveMindmapID_NoActive(t *testing.T) {
	s, _, _ := newTestServer(t, true)
	_, err := s.resolveMindmapID(map[string]any{})
	assert.Error(t, err)

	got, err := s.resolveMindmapID(map[string]any{"mindmapId": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestSetActiveMindmap_Unknown(t *testing.T) {
	s, _, _ := newTestServer(t, true)
	_, err := s.handleSetActiveMindmap(context.Background(), call(map[string]any{"mindmapId": "missing"}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateUndoRedo(t *testing.T) {
	s, _, _ := newTestServer(t, true)
	ctx := context.Background()
	id := createActive(t, s)

	res, err := s.handleGenerateMindmap(ctx, call(map[string]any{"mindmap": generated}))
	require.NoError(t, err)
	var out struct {
		MindmapID string `json:"mindmapId"`
		Layout    string `json:"layout"`
		Nodes     int    `json:"nodes"`
		Edges     int    `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, id, out.MindmapID)
	assert.Equal(t, "hierarchical", out.Layout)
	assert.Equal(t, 3, out.Nodes)
	assert.Equal(t, 2, out.Edges)

	res, err = s.handleUndo(ctx, call(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "0 nodes")

	res, err = s.handleRedo(ctx, call(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "3 nodes")
}

func TestGenerateMindmap_WithName(t *testing.T) {
	s, _, _ := newTestServer(t, true)
	res, err := s.handleGenerateMindmap(context.Background(), call(map[string]any{"mindmap": generated, "name": "New"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), s.active())

	_, err = s.handleGenerateMindmap(context.Background(), call(map[string]any{"mindmap": "nothing"}))
	assert.Error(t, err)
}

func TestNodeTools(t *testing.T) {
	s, a, _ := newTestServer(t, true)
	ctx := context.Background()
	createActive(t, s)

	_, err := s.handleAddNode(ctx, call(map[string]any{"type": "chapter", "nodeId": "root", "label": "Root"}))
	require.NoError(t, err)
	_, err = s.handleAddNode(ctx, call(map[string]any{"type": "main-topic", "nodeId": "t1", "parentId": "root", "x": 10.0, "y": 20.0}))
	require.NoError(t, err)
	_, err = s.handleAddNode(ctx, call(map[string]any{"type": "diagram"}))
	assert.Error(t, err)

	_, err = s.handleUpdateNode(ctx, call(map[string]any{"nodeId": "t1", "label": "Topic"}))
	require.NoError(t, err)
	_, err = s.handleMoveNode(ctx, call(map[string]any{"nodeId": "t1", "x": 5.0, "y": 6.0}))
	require.NoError(t, err)

	node, err := s.findNode(s.active(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Topic", node.Data.Label)
	assert.Equal(t, domain.Position{X: 5, Y: 6}, node.Position)

	st, err := s.mindmaps.GetState(s.active())
	require.NoError(t, err)
	require.Len(t, st.Edges, 1)
	assert.Equal(t, "root", st.Edges[0].Source)

	_, err = s.handleDisconnectNodes(ctx, call(map[string]any{"edgeId": st.Edges[0].ID}))
	require.NoError(t, err)
	_, err = s.handleConnectNodes(ctx, call(map[string]any{"source": "root", "target": "t1"}))
	require.NoError(t, err)

	res, err := s.handleDeleteNode(ctx, call(map[string]any{"nodeId": "t1"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "deleted")
	assert.Equal(t, []string{"delete_node"}, a.seen)

	st, err = s.mindmaps.GetState(s.active())
	require.NoError(t, err)
	assert.Len(t, st.Nodes, 1)
	assert.Empty(t, st.Edges)
}

func TestClearCanvas_Rejected(t *testing.T) {
	s, _, _ := newTestServer(t, false)
	ctx := context.Background()
	createActive(t, s)
	_, err := s.handleAddNode(ctx, call(map[string]any{"type": "chapter"}))
	require.NoError(t, err)

	res, err := s.handleClearCanvas(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, "Action rejected by user", resultText(t, res))

	st, err := s.mindmaps.GetState(s.active())
	require.NoError(t, err)
	assert.Len(t, st.Nodes, 1)
}

func TestDeleteMindmap_ClearsActive(t *testing.T) {
	s, _, _ := newTestServer(t, true)
	id := createActive(t, s)
	_, err := s.handleDeleteMindmap(context.Background(), call(map[string]any{"mindmapId": id}))
	require.NoError(t, err)
	assert.Equal(t, "", s.active())
}

func TestExportFlowAndResources(t *testing.T) {
	s, _, _ := newTestServer(t, true)
	ctx := context.Background()
	id := createActive(t, s)
	_, err := s.handleGenerateMindmap(ctx, call(map[string]any{"mindmap": generated}))
	require.NoError(t, err)

	res, err := s.handleExportFlow(ctx, call(nil))
	require.NoError(t, err)
	var f domain.Flow
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &f))
	assert.Len(t, f.Nodes, 3)

	var rreq mcp.ReadResourceRequest
	rreq.Params.URI = "mindmap://" + id + "/flow"
	contents, err := s.handleFlowResource(ctx, rreq)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, `"c1"`)

	contents, err = s.handleMindmapsResource(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, id)
}

func TestMindmapIDFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mindmap://abc-123/flow", "abc-123"},
		{"mindmap://abc/other", ""},
		{"mindmap://a/b/flow", ""},
		{"notes://abc/flow", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mindmapIDFromURI(tt.uri), tt.uri)
	}
}

func TestGeneratePrompt(t *testing.T) {
	s, _, _ := newTestServer(t, true)
	var req mcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"topic": "Rust", "context": "for beginners"}

	res, err := s.handleGeneratePrompt(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(mcp.TextContent).Text
	assert.Contains(t, text, `"Rust"`)
	assert.Contains(t, text, "for beginners")
	assert.Contains(t, text, "generate_mindmap")
}

func TestApprovalQueue_Store(t *testing.T) {
	_, _, db := newTestServer(t, true)
	store := storage.NewApprovalStore(db)

	q := NewApprovalQueue(context.Background(), service.NopEmitter{})
	q.SetStore(store)
	q.poll = 10 * time.Millisecond

	go func() {
		for i := 0; i < 100; i++ {
			pending, _ := store.ListPending()
			if len(pending) > 0 {
				store.Resolve(pending[0].ID, true)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()

	ok, err := q.Request("clear_canvas", "Clear everything")
	require.NoError(t, err)
	assert.True(t, ok)

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApprovalQueue_Timeout(t *testing.T) {
	q := NewApprovalQueue(context.Background(), service.NopEmitter{})
	q.timeout = 20 * time.Millisecond

	ok, err := q.Request("delete_node", "Delete x")
	assert.False(t, ok)
	assert.Error(t, err)
}
