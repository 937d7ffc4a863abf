package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindmap/internal/config"
	"mindmap/internal/domain"
	"mindmap/internal/service"
	"mindmap/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.BackupDir = filepath.Join(cfg.DataDir, "backups")
	return cfg
}

func TestOpenCore_UsesSQLiteUnderDataDir(t *testing.T) {
	cfg := testConfig(t)
	core, err := OpenCore(cfg, zap.NewNop(), service.NopEmitter{})
	require.NoError(t, err)
	defer core.Close()

	assert.Equal(t, "sqlite", core.DB.Driver())
	assert.FileExists(t, cfg.DBPath())
}

func TestChangeWatcher_DetectsExternalEdits(t *testing.T) {
	cfg := testConfig(t)
	gui, err := OpenCore(cfg, zap.NewNop(), service.NopEmitter{})
	require.NoError(t, err)
	defer gui.Close()
	ctx := context.Background()

	m, err := gui.Mindmaps.CreateMindmap(ctx, "Shared")
	require.NoError(t, err)

	em := &service.MockEmitter{}
	var reloaded []string
	w := newChangeWatcher(ctx, gui.Store, gui.Approvals, em, func(id string) {
		reloaded = append(reloaded, id)
		gui.Mindmaps.Reload(id)
	}, zap.NewNop())
	w.SetMindmap(m.ID)
	w.check() // baseline, emits nothing

	assert.Empty(t, em.Named(EventExternalChange))

	// a second process (standalone MCP) edits the same database
	other, err := OpenCore(cfg, zap.NewNop(), service.NopEmitter{})
	require.NoError(t, err)
	defer other.Close()
	_, err = other.Mindmaps.AddNode(ctx, m.ID, service.NodeInput{ID: "x", Type: domain.NodeTypeChapter})
	require.NoError(t, err)

	w.check()
	assert.Len(t, em.Named(EventExternalChange), 1)
	assert.Equal(t, []string{m.ID}, reloaded)

	st, err := gui.Mindmaps.GetState(m.ID)
	require.NoError(t, err)
	assert.Len(t, st.Nodes, 1)

	// nothing new, nothing emitted
	w.check()
	assert.Len(t, em.Named(EventExternalChange), 1)
}

func TestChangeWatcher_SyncHidesOwnWrites(t *testing.T) {
	cfg := testConfig(t)
	core, err := OpenCore(cfg, zap.NewNop(), service.NopEmitter{})
	require.NoError(t, err)
	defer core.Close()
	ctx := context.Background()

	m, err := core.Mindmaps.CreateMindmap(ctx, "Mine")
	require.NoError(t, err)

	em := &service.MockEmitter{}
	w := newChangeWatcher(ctx, core.Store, nil, em, func(string) {}, zap.NewNop())
	w.SetMindmap(m.ID)
	w.check()

	_, err = core.Mindmaps.AddNode(ctx, m.ID, service.NodeInput{Type: domain.NodeTypeChapter})
	require.NoError(t, err)
	w.Sync()
	w.check()

	assert.Empty(t, em.Named(EventExternalChange))
	assert.Empty(t, em.Named(service.EventMindmapsChanged))
}

func TestChangeWatcher_ForwardsApprovalsOnce(t *testing.T) {
	cfg := testConfig(t)
	core, err := OpenCore(cfg, zap.NewNop(), service.NopEmitter{})
	require.NoError(t, err)
	defer core.Close()

	em := &service.MockEmitter{}
	w := newChangeWatcher(context.Background(), core.Store, core.Approvals, em, func(string) {}, zap.NewNop())

	require.NoError(t, core.Approvals.Create(&storage.Approval{ID: "a1", Tool: "clear_canvas", Description: "Clear", Metadata: "{}"}))
	w.check()
	w.check()
	require.Len(t, em.Named(EventApprovalRequired), 1)
	payload := em.Named(EventApprovalRequired)[0].Data.(map[string]string)
	assert.Equal(t, "clear_canvas", payload["tool"])

	require.NoError(t, core.Approvals.Resolve("a1", true))
	w.check()
	w.mu.Lock()
	assert.Empty(t, w.emittedApprovals)
	w.mu.Unlock()
}
