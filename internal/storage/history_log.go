package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mindmap/internal/domain"
)

// HistoryLogStore persists each mindmap's undo history so it survives
// restarts and is shared with a standalone MCP process.
type HistoryLogStore struct {
	db *DB
}

func NewHistoryLogStore(db *DB) *HistoryLogStore {
	return &HistoryLogStore{db: db}
}

// LoadHistory returns the full log. A mindmap without history yields an
// empty log with Current == -1.
func (s *HistoryLogStore) LoadHistory(mindmapID string) (domain.HistoryLog, error) {
	log := domain.HistoryLog{Snapshots: []domain.Snapshot{}, Current: -1}

	rows, err := s.db.query(
		`SELECT snapshot_json FROM history_snapshots WHERE mindmap_id = ? ORDER BY seq ASC`, mindmapID,
	)
	if err != nil {
		return log, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return log, fmt.Errorf("scan snapshot: %w", err)
		}
		var snap domain.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return log, fmt.Errorf("decode snapshot: %w", err)
		}
		log.Snapshots = append(log.Snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return log, err
	}
	if len(log.Snapshots) == 0 {
		return log, nil
	}

	var current int
	err = s.db.queryRow(`SELECT current_index FROM history_cursor WHERE mindmap_id = ?`, mindmapID).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = len(log.Snapshots) - 1 // Fallback
	case err != nil:
		return log, fmt.Errorf("load cursor: %w", err)
	}
	log.Current = current
	return log, nil
}

// PushSnapshot drops snapshots at index and beyond, stores snap at index and
// moves the cursor there.
func (s *HistoryLogStore) PushSnapshot(mindmapID string, index int, snap domain.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	t, err := s.db.begin()
	if err != nil {
		return err
	}
	defer t.Rollback()

	if _, err := t.exec(`DELETE FROM history_snapshots WHERE mindmap_id = ? AND seq >= ?`, mindmapID, index); err != nil {
		return fmt.Errorf("truncate history: %w", err)
	}
	if _, err := t.exec(
		`INSERT INTO history_snapshots (mindmap_id, seq, snapshot_json, created_at) VALUES (?, ?, ?, ?)`,
		mindmapID, index, string(raw), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if _, err := t.exec(s.db.dialect.upsert("history_cursor", "mindmap_id", "current_index"), mindmapID, index); err != nil {
		return fmt.Errorf("update cursor: %w", err)
	}
	return t.Commit()
}

// SetCursor updates the current position pointer.
func (s *HistoryLogStore) SetCursor(mindmapID string, index int) error {
	_, err := s.db.exec(s.db.dialect.upsert("history_cursor", "mindmap_id", "current_index"), mindmapID, index)
	if err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}

// SaveHistory replaces the whole stored log.
func (s *HistoryLogStore) SaveHistory(mindmapID string, log domain.HistoryLog) error {
	t, err := s.db.begin()
	if err != nil {
		return err
	}
	defer t.Rollback()

	if _, err := t.exec(`DELETE FROM history_snapshots WHERE mindmap_id = ?`, mindmapID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	if _, err := t.exec(`DELETE FROM history_cursor WHERE mindmap_id = ?`, mindmapID); err != nil {
		return fmt.Errorf("clear cursor: %w", err)
	}

	now := time.Now().UTC()
	for i, snap := range log.Snapshots {
		raw, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if _, err := t.exec(
			`INSERT INTO history_snapshots (mindmap_id, seq, snapshot_json, created_at) VALUES (?, ?, ?, ?)`,
			mindmapID, i, string(raw), now,
		); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	if len(log.Snapshots) > 0 {
		if _, err := t.exec(
			`INSERT INTO history_cursor (mindmap_id, current_index) VALUES (?, ?)`, mindmapID, log.Current,
		); err != nil {
			return fmt.Errorf("insert cursor: %w", err)
		}
	}
	return t.Commit()
}

// DeleteHistory removes all undo data for a mindmap.
func (s *HistoryLogStore) DeleteHistory(mindmapID string) error {
	return s.SaveHistory(mindmapID, domain.HistoryLog{Current: -1})
}
