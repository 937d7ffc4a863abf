package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mindmap/internal/domain"
)

// MindmapStore implements domain.MindmapStore.
type MindmapStore struct {
	db *DB
}

func NewMindmapStore(db *DB) *MindmapStore {
	return &MindmapStore{db: db}
}

const mindmapCols = `id, name, viewport_x, viewport_y, viewport_zoom, created_at, updated_at`

func scanMindmap(sc interface{ Scan(...any) error }, m *domain.Mindmap) error {
	return sc.Scan(&m.ID, &m.Name, &m.ViewportX, &m.ViewportY, &m.ViewportZoom, &m.CreatedAt, &m.UpdatedAt)
}

func (s *MindmapStore) CreateMindmap(m *domain.Mindmap) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.ViewportZoom == 0 {
		m.ViewportZoom = 1
	}
	_, err := s.db.exec(
		`INSERT INTO mindmaps (`+mindmapCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.ViewportX, m.ViewportY, m.ViewportZoom, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create mindmap: %w", err)
	}
	return nil
}

func (s *MindmapStore) GetMindmap(id string) (*domain.Mindmap, error) {
	m := &domain.Mindmap{}
	err := scanMindmap(s.db.queryRow(`SELECT `+mindmapCols+` FROM mindmaps WHERE id = ?`, id), m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get mindmap %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get mindmap: %w", err)
	}
	return m, nil
}

func (s *MindmapStore) ListMindmaps() ([]domain.Mindmap, error) {
	rows, err := s.db.query(`SELECT ` + mindmapCols + ` FROM mindmaps ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mindmaps []domain.Mindmap
	for rows.Next() {
		var m domain.Mindmap
		if err := scanMindmap(rows, &m); err != nil {
			return nil, err
		}
		mindmaps = append(mindmaps, m)
	}
	return mindmaps, rows.Err()
}

func (s *MindmapStore) UpdateMindmap(m *domain.Mindmap) error {
	m.UpdatedAt = time.Now().UTC()
	res, err := s.db.exec(
		`UPDATE mindmaps SET name = ?, viewport_x = ?, viewport_y = ?, viewport_zoom = ?, updated_at = ? WHERE id = ?`,
		m.Name, m.ViewportX, m.ViewportY, m.ViewportZoom, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update mindmap: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update mindmap %s: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteMindmap removes the mindmap together with its elements and history.
func (s *MindmapStore) DeleteMindmap(id string) error {
	t, err := s.db.begin()
	if err != nil {
		return err
	}
	defer t.Rollback()

	for _, table := range []string{"nodes", "edges", "history_snapshots", "history_cursor"} {
		if _, err := t.exec(`DELETE FROM `+table+` WHERE mindmap_id = ?`, id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := t.exec(`DELETE FROM mindmaps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete mindmap: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete mindmap %s: %w", id, domain.ErrNotFound)
	}
	return t.Commit()
}

// Fingerprint summarises the mindmap list and one mindmap's last change so
// pollers can detect writes made by another process.
func (s *MindmapStore) Fingerprint(mindmapID string) (list, active string, err error) {
	var count int
	var maxUpdated sql.NullString
	if err = s.db.queryRow(`SELECT COUNT(*), MAX(updated_at) FROM mindmaps`).Scan(&count, &maxUpdated); err != nil {
		return "", "", fmt.Errorf("mindmap fingerprint: %w", err)
	}
	list = fmt.Sprintf("%d:%s", count, maxUpdated.String)
	if mindmapID == "" {
		return list, "", nil
	}
	var updated sql.NullString
	var cursor sql.NullInt64
	err = s.db.queryRow(
		`SELECT m.updated_at, c.current_index FROM mindmaps m
		 LEFT JOIN history_cursor c ON c.mindmap_id = m.id WHERE m.id = ?`, mindmapID,
	).Scan(&updated, &cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return list, "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("mindmap fingerprint: %w", err)
	}
	cur := int64(-1)
	if cursor.Valid {
		cur = cursor.Int64
	}
	return list, fmt.Sprintf("%s:%d", updated.String, cur), nil
}
