package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindmap/internal/config"
	"mindmap/internal/domain"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("environment: test\nlog_level: error\n"), 0o644))
	t.Setenv("MINDMAP_CONFIG", cfgPath)
	t.Setenv("MINDMAP_DATA_DIR", filepath.Join(dir, "data"))
	return dir
}

func run(t *testing.T, gui GUIFunc, args ...string) (string, string, error) {
	t.Helper()
	if gui == nil {
		gui = func(*config.Config, *zap.Logger) error { return nil }
	}
	cmd := NewRootCmd(gui)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const generated = "Sure!\n```json\n" + `{
  "nodes": [
    {"id": "c1", "type": "chapter", "data": {"label": "Go"}},
    {"id": "m1", "type": "main-topic", "data": {"label": "Types"}},
    {"id": "s1", "type": "sub-topic", "data": {"label": "Structs"}},
    {"id": "x1", "type": "diagram", "data": {"label": "?"}}
  ],
  "edges": [
    {"source": "c1", "target": "m1"},
    {"source": "m1", "target": "s1"},
    {"source": "s1", "target": "x1"}
  ]
}` + "\n```"

func TestRootRunsGUIByDefault(t *testing.T) {
	isolate(t)
	var got *config.Config
	_, _, err := run(t, func(cfg *config.Config, _ *zap.Logger) error {
		got = cfg
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "test", got.Environment)
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "gen.txt")
	require.NoError(t, os.WriteFile(in, []byte(generated), 0o644))

	out, errOut, err := run(t, nil, "layout", in)
	require.NoError(t, err)
	assert.Contains(t, errOut, "dropped node x1")

	var f domain.Flow
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	require.Len(t, f.Nodes, 3)
	assert.Len(t, f.Edges, 2)
	assert.Equal(t, domain.Position{X: 500, Y: 100}, f.Nodes[0].Position)
}

func TestImportListExport(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "gen.txt")
	require.NoError(t, os.WriteFile(in, []byte(generated), 0o644))

	out, _, err := run(t, nil, "import", in, "--name", "Go", "--layout")
	require.NoError(t, err)
	assert.Contains(t, out, "3 nodes, 2 edges")
	id := strings.SplitN(out, ":", 2)[0]

	out, _, err = run(t, nil, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Go")

	dest := filepath.Join(dir, "export.json")
	_, _, err = run(t, nil, "export", id, "-o", dest)
	require.NoError(t, err)

	out, _, err = run(t, nil, "import", dest, "--mindmap", id)
	require.NoError(t, err)
	assert.Contains(t, out, "3 nodes")
}

func TestImportRequiresOneTarget(t *testing.T) {
	isolate(t)
	_, _, err := run(t, nil, "import", "x.json")
	assert.Error(t, err)
	_, _, err = run(t, nil, "import", "x.json", "--name", "a", "--mindmap", "b")
	assert.Error(t, err)
}

func TestBackupCommand(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "gen.txt")
	require.NoError(t, os.WriteFile(in, []byte(generated), 0o644))
	_, _, err := run(t, nil, "import", in, "--name", "Go", "--layout")
	require.NoError(t, err)

	out, _, err := run(t, nil, "backup")
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.FileExists(t, path)
	assert.Equal(t, filepath.Join(dir, "data", "backups"), filepath.Dir(path))
}
