package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := New(filepath.Join(dir, "test.db"), dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createMindmap(t *testing.T, db *DB, id string) *domain.Mindmap {
	t.Helper()
	m := &domain.Mindmap{ID: id, Name: "Map " + id}
	require.NoError(t, NewMindmapStore(db).CreateMindmap(m))
	return m
}

func sampleElements() ([]domain.Node, []domain.Edge) {
	nodes := []domain.Node{
		{ID: "c1", Type: domain.NodeTypeChapter, Position: domain.Position{X: 500, Y: 100},
			Data: domain.NodeData{Label: "Root", Content: "<p>hi</p>", Tags: []domain.Tag{{ID: "t", Label: "x", Color: "#f00"}}}},
		{ID: "m1", Type: domain.NodeTypeMainTopic, Position: domain.Position{X: 500, Y: 300},
			Data: domain.NodeData{Label: "Topic", Media: []domain.MediaItem{{Type: domain.MediaTypeYouTube, URL: "https://youtu.be/x"}}}},
	}
	edges := []domain.Edge{
		{ID: "e1", Source: "c1", Target: "m1", Animated: true, Style: &domain.EdgeStyle{Stroke: "#333", StrokeWidth: 2}},
		{ID: "e2", Source: "m1", Target: "c1", Label: "back"},
	}
	return nodes, edges
}

func TestMindmapStore_CRUD(t *testing.T) {
	db := openTestDB(t)
	s := NewMindmapStore(db)

	m := createMindmap(t, db, "a")
	assert.Equal(t, 1.0, m.ViewportZoom)

	got, err := s.GetMindmap("a")
	require.NoError(t, err)
	assert.Equal(t, "Map a", got.Name)

	got.Name = "Renamed"
	got.ViewportX = 42
	require.NoError(t, s.UpdateMindmap(got))

	list, err := s.ListMindmaps()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)
	assert.Equal(t, 42.0, list[0].ViewportX)

	require.NoError(t, s.DeleteMindmap("a"))
	_, err = s.GetMindmap("a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteMindmap("a"), domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdateMindmap(&domain.Mindmap{ID: "zz"}), domain.ErrNotFound)
}

func TestElementStore_ReplaceAndList(t *testing.T) {
	db := openTestDB(t)
	createMindmap(t, db, "a")
	createMindmap(t, db, "b")
	s := NewElementStore(db)

	nodes, edges := sampleElements()
	require.NoError(t, s.ReplaceElements("a", nodes, edges))
	// same ids in another mindmap do not collide
	require.NoError(t, s.ReplaceElements("b", nodes[:1], nil))

	gotNodes, err := s.ListNodes("a")
	require.NoError(t, err)
	assert.Equal(t, nodes, gotNodes)

	gotEdges, err := s.ListEdges("a")
	require.NoError(t, err)
	assert.Equal(t, edges, gotEdges)

	require.NoError(t, s.ReplaceElements("a", nodes[1:], nil))
	gotNodes, err = s.ListNodes("a")
	require.NoError(t, err)
	require.Len(t, gotNodes, 1)
	assert.Equal(t, "m1", gotNodes[0].ID)

	require.NoError(t, s.DeleteElements("a"))
	gotNodes, err = s.ListNodes("a")
	require.NoError(t, err)
	assert.Empty(t, gotNodes)

	bNodes, err := s.ListNodes("b")
	require.NoError(t, err)
	assert.Len(t, bNodes, 1)
}

func TestHistoryLogStore_PushAndCursor(t *testing.T) {
	db := openTestDB(t)
	createMindmap(t, db, "a")
	s := NewHistoryLogStore(db)

	empty, err := s.LoadHistory("a")
	require.NoError(t, err)
	assert.Equal(t, -1, empty.Current)
	assert.Empty(t, empty.Snapshots)

	nodes, edges := sampleElements()
	snapA := domain.Snapshot{Nodes: nodes[:1], Edges: []domain.Edge{}}
	snapB := domain.Snapshot{Nodes: nodes, Edges: edges}
	snapC := domain.Snapshot{Nodes: nodes[1:], Edges: []domain.Edge{}}

	require.NoError(t, s.PushSnapshot("a", 0, snapA))
	require.NoError(t, s.PushSnapshot("a", 1, snapB))
	require.NoError(t, s.SetCursor("a", 0))
	// a write after undo truncates the future
	require.NoError(t, s.PushSnapshot("a", 1, snapC))

	log, err := s.LoadHistory("a")
	require.NoError(t, err)
	assert.Equal(t, 1, log.Current)
	require.Len(t, log.Snapshots, 2)
	assert.Equal(t, snapA, log.Snapshots[0])
	assert.Equal(t, snapC, log.Snapshots[1])

	require.NoError(t, s.SetCursor("a", 0))
	log, err = s.LoadHistory("a")
	require.NoError(t, err)
	assert.Equal(t, 0, log.Current)
}

func TestHistoryLogStore_SaveAndDelete(t *testing.T) {
	db := openTestDB(t)
	createMindmap(t, db, "a")
	s := NewHistoryLogStore(db)

	nodes, edges := sampleElements()
	in := domain.HistoryLog{
		Snapshots: []domain.Snapshot{{Nodes: nodes, Edges: edges}, {Nodes: nodes[:1], Edges: []domain.Edge{}}},
		Current:   0,
	}
	require.NoError(t, s.SaveHistory("a", in))

	out, err := s.LoadHistory("a")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, s.DeleteHistory("a"))
	out, err = s.LoadHistory("a")
	require.NoError(t, err)
	assert.Equal(t, -1, out.Current)
}

func TestDeleteMindmap_RemovesChildren(t *testing.T) {
	db := openTestDB(t)
	createMindmap(t, db, "a")
	nodes, edges := sampleElements()
	require.NoError(t, NewElementStore(db).ReplaceElements("a", nodes, edges))
	require.NoError(t, NewHistoryLogStore(db).PushSnapshot("a", 0, domain.Snapshot{Nodes: nodes, Edges: edges}))

	require.NoError(t, NewMindmapStore(db).DeleteMindmap("a"))

	var count int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM history_snapshots`).Scan(&count))
	assert.Zero(t, count)
}

func TestMindmapStore_Fingerprint(t *testing.T) {
	db := openTestDB(t)
	s := NewMindmapStore(db)
	createMindmap(t, db, "a")

	list1, active1, err := s.Fingerprint("a")
	require.NoError(t, err)
	assert.NotEmpty(t, active1)

	require.NoError(t, NewHistoryLogStore(db).PushSnapshot("a", 0, domain.Snapshot{}))
	list2, active2, err := s.Fingerprint("a")
	require.NoError(t, err)
	assert.Equal(t, list1, list2)
	assert.NotEqual(t, active1, active2)

	createMindmap(t, db, "b")
	list3, _, err := s.Fingerprint("")
	require.NoError(t, err)
	assert.NotEqual(t, list2, list3)
}

func TestSettingsStore(t *testing.T) {
	s := NewSettingsStore(openTestDB(t))

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 7, s.GetInt("missing", 7))

	require.NoError(t, s.SetInt("window_width", 1600))
	require.NoError(t, s.SetInt("window_width", 1700))
	assert.Equal(t, 1700, s.GetInt("window_width", 0))

	require.NoError(t, s.Set("active_mindmap", "abc"))
	v, ok, err := s.Get("active_mindmap")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestApprovalStore(t *testing.T) {
	s := NewApprovalStore(openTestDB(t))

	a := &Approval{ID: "ap1", Tool: "delete_node", Description: "Delete node x", Metadata: "{}"}
	require.NoError(t, s.Create(a))

	pending, err := s.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "delete_node", pending[0].Tool)

	require.NoError(t, s.Resolve("ap1", true))
	st, err := s.Status("ap1")
	require.NoError(t, err)
	assert.Equal(t, ApprovalApproved, st)
	assert.Error(t, s.Resolve("ap1", false), "already resolved")

	require.NoError(t, s.Delete("ap1"))
	_, err = s.Status("ap1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDialect(t *testing.T) {
	pg, err := dialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))
	assert.Equal(t,
		"INSERT INTO app_settings (setting_key, setting_value) VALUES ($1, $2) ON CONFLICT(setting_key) DO UPDATE SET setting_value = excluded.setting_value",
		pg.rebind(pg.upsert("app_settings", "setting_key", "setting_value")))

	my, err := dialectFor("mysql")
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO history_cursor (mindmap_id, current_index) VALUES (?, ?) ON DUPLICATE KEY UPDATE current_index = VALUES(current_index)",
		my.upsert("history_cursor", "mindmap_id", "current_index"))
	assert.Contains(t, my.ddl("x {{text}}"), "LONGTEXT")

	_, err = dialectFor("oracle")
	assert.Error(t, err)
}
