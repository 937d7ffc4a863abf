// Package history keeps a linear undo/redo log of full canvas snapshots.
//
// A Store has no internal locking. The owner serialises access.
package history

import (
	"errors"
	"fmt"

	"mindmap/internal/domain"
)

var ErrInvalidCursor = errors.New("history cursor out of range")

// Store holds the snapshot log, the cursor and the mirrored current
// elements. The zero value is not usable; call New.
type Store struct {
	snapshots []domain.Snapshot
	current   int

	nodes []domain.Node
	edges []domain.Edge
}

func New() *Store {
	return &Store{
		current: -1,
		nodes:   []domain.Node{},
		edges:   []domain.Edge{},
	}
}

// SetElements records a new snapshot. Everything after the cursor is
// discarded first, so Redo is a no-op until the next Undo.
func (s *Store) SetElements(nodes []domain.Node, edges []domain.Edge) {
	s.snapshots = s.snapshots[:s.current+1]
	s.snapshots = append(s.snapshots, domain.Snapshot{
		Nodes: domain.CloneNodes(nodes),
		Edges: domain.CloneEdges(edges),
	})
	s.current = len(s.snapshots) - 1
	s.mirror()
}

// Undo steps back one snapshot. It reports false and changes nothing at
// the first snapshot or on an empty log.
func (s *Store) Undo() bool {
	if s.current <= 0 {
		return false
	}
	s.current--
	s.mirror()
	return true
}

// Redo steps forward one snapshot. It reports false and changes nothing
// at the last snapshot.
func (s *Store) Redo() bool {
	if s.current >= len(s.snapshots)-1 {
		return false
	}
	s.current++
	s.mirror()
	return true
}

func (s *Store) mirror() {
	if s.current < 0 {
		s.nodes = []domain.Node{}
		s.edges = []domain.Edge{}
		return
	}
	snap := s.snapshots[s.current]
	s.nodes = domain.CloneNodes(snap.Nodes)
	s.edges = domain.CloneEdges(snap.Edges)
}

// Nodes returns a copy of the current nodes.
func (s *Store) Nodes() []domain.Node { return domain.CloneNodes(s.nodes) }

// Edges returns a copy of the current edges.
func (s *Store) Edges() []domain.Edge { return domain.CloneEdges(s.edges) }

func (s *Store) CurrentIndex() int { return s.current }
func (s *Store) Len() int          { return len(s.snapshots) }
func (s *Store) CanUndo() bool     { return s.current > 0 }
func (s *Store) CanRedo() bool     { return s.current < len(s.snapshots)-1 }

// Snapshots returns a copy of the whole log.
func (s *Store) Snapshots() []domain.Snapshot {
	out := make([]domain.Snapshot, len(s.snapshots))
	for i, snap := range s.snapshots {
		out[i] = snap.Clone()
	}
	return out
}

// Log exports the log and cursor for persistence.
func (s *Store) Log() domain.HistoryLog {
	return domain.HistoryLog{Snapshots: s.Snapshots(), Current: s.current}
}

// Restore replaces the whole state with a previously exported log.
func (s *Store) Restore(log domain.HistoryLog) error {
	switch {
	case len(log.Snapshots) == 0 && log.Current != -1:
		return fmt.Errorf("%w: %d for empty log", ErrInvalidCursor, log.Current)
	case len(log.Snapshots) > 0 && (log.Current < 0 || log.Current >= len(log.Snapshots)):
		return fmt.Errorf("%w: %d of %d", ErrInvalidCursor, log.Current, len(log.Snapshots))
	}
	s.snapshots = make([]domain.Snapshot, len(log.Snapshots))
	for i, snap := range log.Snapshots {
		s.snapshots[i] = snap.Clone()
	}
	s.current = log.Current
	s.mirror()
	return nil
}

// Reset drops the log and returns to the empty state.
func (s *Store) Reset() {
	s.snapshots = nil
	s.current = -1
	s.mirror()
}
