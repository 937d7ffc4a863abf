package flow

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap/internal/domain"
)

const generated = `{
  "nodes": [
    {"id": "chapter-1", "type": "chapter", "data": {"label": "Go", "type": "chapter", "content": "The language"}},
    {"id": "main-topic-1", "data": {"label": "Concurrency", "type": "main-topic"}}
  ],
  "edges": [
    {"id": "edge-1-2", "source": "chapter-1", "target": "main-topic-1", "animated": true}
  ]
}`

func TestExtractGenerated(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"json fence", "Here you go:\n```json\n" + generated + "\n```\nEnjoy."},
		{"plain fence", "```\n" + generated + "\n```"},
		{"bare braces", "Sure! " + generated + " Let me know."},
		{"raw", generated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ExtractGenerated(tt.text)
			require.NoError(t, err)
			require.Len(t, f.Nodes, 2)
			require.Len(t, f.Edges, 1)
			assert.Equal(t, domain.NodeTypeChapter, f.Nodes[0].Type)
			assert.Equal(t, domain.NodeTypeMainTopic, f.Nodes[1].Type, "type taken from data.type")
			assert.True(t, f.Edges[0].Animated)
		})
	}
}

func TestExtractGenerated_Errors(t *testing.T) {
	_, err := ExtractGenerated("no json here")
	assert.ErrorIs(t, err, ErrUnparseable)

	_, err = ExtractGenerated(`{"nodes": []}`)
	assert.ErrorIs(t, err, ErrNoStructure)

	_, err = ExtractGenerated("```json\n{\"nodes\": [\n```")
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestExtractGenerated_KeepsUnknownTypes(t *testing.T) {
	f, err := ExtractGenerated(`{"nodes":[{"id":"x","type":"note"}],"edges":[]}`)
	require.NoError(t, err)
	assert.Equal(t, domain.NodeType("note"), f.Nodes[0].Type)
	assert.Equal(t, "x", f.Nodes[0].Data.Label)
}

func TestDecode_Validation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"ok", `{"nodes":[{"id":"a","type":"chapter"},{"id":"b","type":"sub-topic"}],"edges":[{"id":"e","source":"a","target":"b"}]}`, ""},
		{"missing id", `{"nodes":[{"type":"chapter"}],"edges":[]}`, "ID is required"},
		{"bad type", `{"nodes":[{"id":"a","type":"note"}],"edges":[]}`, "must be one of"},
		{"dangling edge", `{"nodes":[{"id":"a","type":"chapter"}],"edges":[{"id":"e","source":"a","target":"zz"}]}`, "unknown node"},
		{"duplicate", `{"nodes":[{"id":"a","type":"chapter"},{"id":"a","type":"chapter"}],"edges":[]}`, "duplicate node id"},
		{"duplicate edge", `{"nodes":[{"id":"a","type":"chapter"},{"id":"b","type":"main-topic"}],"edges":[{"source":"a","target":"b"},{"source":"a","target":"b"}]}`, "duplicate edge id"},
		{"bad media", `{"nodes":[{"id":"a","type":"chapter","data":{"media":[{"type":"gif","url":"x"}]}}],"edges":[]}`, "must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFlow)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecode_MissingEdgeIDGenerated(t *testing.T) {
	f, err := Decode(strings.NewReader(`{"nodes":[{"id":"a","type":"chapter"},{"id":"b","type":"main-topic"}],"edges":[{"source":"a","target":"b"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "edge-a-b", f.Edges[0].ID)
}

func TestEncode_EmptySlices(t *testing.T) {
	data, err := Encode(domain.Flow{}, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "map.json")
	in := domain.Flow{
		Nodes: []domain.Node{
			{ID: "a", Type: domain.NodeTypeChapter, Position: domain.Position{X: 1, Y: 2},
				Data: domain.NodeData{Label: "A", Type: domain.NodeTypeChapter, Tags: []domain.Tag{{ID: "t", Label: "tag", Color: "#fff"}}}},
			{ID: "b", Type: domain.NodeTypeSubTopic, Data: domain.NodeData{Label: "B", Type: domain.NodeTypeSubTopic}},
		},
		Edges: []domain.Edge{{ID: "e", Source: "a", Target: "b", Animated: true, Style: &domain.EdgeStyle{Stroke: "#000", StrokeWidth: 2}}},
	}
	require.NoError(t, WriteFile(path, in))

	out, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
