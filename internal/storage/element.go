package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"mindmap/internal/domain"
)

// ElementStore implements domain.ElementStore. Nodes and edges are stored
// as rows with their payload serialized to JSON; sort_order keeps the
// canvas order.
type ElementStore struct {
	db *DB
}

func NewElementStore(db *DB) *ElementStore {
	return &ElementStore{db: db}
}

func (s *ElementStore) ListNodes(mindmapID string) ([]domain.Node, error) {
	rows, err := s.db.query(
		`SELECT id, type, x, y, data_json FROM nodes WHERE mindmap_id = ? ORDER BY sort_order ASC`,
		mindmapID,
	)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []domain.Node{}
	for rows.Next() {
		var n domain.Node
		var data string
		if err := rows.Scan(&n.ID, &n.Type, &n.Position.X, &n.Position.Y, &data); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &n.Data); err != nil {
			return nil, fmt.Errorf("decode node %s: %w", n.ID, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *ElementStore) ListEdges(mindmapID string) ([]domain.Edge, error) {
	rows, err := s.db.query(
		`SELECT id, source, target, source_handle, target_handle, type, label, animated, style_json
		 FROM edges WHERE mindmap_id = ? ORDER BY sort_order ASC`,
		mindmapID,
	)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	edges := []domain.Edge{}
	for rows.Next() {
		var e domain.Edge
		var animated int
		var style string
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.SourceHandle, &e.TargetHandle, &e.Type, &e.Label, &animated, &style); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Animated = animated != 0
		if style != "" && style != "null" {
			e.Style = &domain.EdgeStyle{}
			if err := json.Unmarshal([]byte(style), e.Style); err != nil {
				return nil, fmt.Errorf("decode edge %s: %w", e.ID, err)
			}
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// ReplaceElements atomically replaces all nodes and edges of a mindmap and
// bumps its updated_at. Every write path goes through here.
func (s *ElementStore) ReplaceElements(mindmapID string, nodes []domain.Node, edges []domain.Edge) error {
	t, err := s.db.begin()
	if err != nil {
		return err
	}
	defer t.Rollback()

	if _, err := t.exec(`DELETE FROM edges WHERE mindmap_id = ?`, mindmapID); err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	if _, err := t.exec(`DELETE FROM nodes WHERE mindmap_id = ?`, mindmapID); err != nil {
		return fmt.Errorf("delete nodes: %w", err)
	}

	now := time.Now().UTC()
	for i, n := range nodes {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("encode node %s: %w", n.ID, err)
		}
		_, err = t.exec(
			`INSERT INTO nodes (mindmap_id, id, sort_order, type, x, y, data_json, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			mindmapID, n.ID, i, string(n.Type), n.Position.X, n.Position.Y, string(data), now,
		)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}

	for i, e := range edges {
		style := "null"
		if e.Style != nil {
			b, err := json.Marshal(e.Style)
			if err != nil {
				return fmt.Errorf("encode edge %s: %w", e.ID, err)
			}
			style = string(b)
		}
		animated := 0
		if e.Animated {
			animated = 1
		}
		_, err = t.exec(
			`INSERT INTO edges (mindmap_id, id, sort_order, source, target, source_handle, target_handle, type, label, animated, style_json, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			mindmapID, e.ID, i, e.Source, e.Target, e.SourceHandle, e.TargetHandle, e.Type, e.Label, animated, style, now,
		)
		if err != nil {
			return fmt.Errorf("insert edge %s: %w", e.ID, err)
		}
	}

	if _, err := t.exec(`UPDATE mindmaps SET updated_at = ? WHERE id = ?`, now, mindmapID); err != nil {
		return fmt.Errorf("touch mindmap: %w", err)
	}

	return t.Commit()
}

func (s *ElementStore) DeleteElements(mindmapID string) error {
	return s.ReplaceElements(mindmapID, nil, nil)
}
