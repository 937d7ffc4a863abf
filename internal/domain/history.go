package domain

// Snapshot is one entry of a mindmap's undo history: the complete canvas at
// one point in time.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{Nodes: CloneNodes(s.Nodes), Edges: CloneEdges(s.Edges)}
}

// HistoryLog is the persisted form of a history: every snapshot plus the
// cursor. Current is -1 for an empty log.
type HistoryLog struct {
	Snapshots []Snapshot `json:"snapshots"`
	Current   int        `json:"current"`
}

// HistoryLogStore persists a history incrementally: PushSnapshot mirrors
// SetElements (drop everything from index on, append, move the cursor) and
// SetCursor mirrors Undo/Redo.
type HistoryLogStore interface {
	LoadHistory(mindmapID string) (HistoryLog, error)
	PushSnapshot(mindmapID string, index int, snap Snapshot) error
	SetCursor(mindmapID string, index int) error
	SaveHistory(mindmapID string, log HistoryLog) error
	DeleteHistory(mindmapID string) error
}
