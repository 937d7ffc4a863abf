package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mindmap/internal/domain"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval is a destructive MCP action waiting for the user. A standalone
// MCP process writes it; the GUI process answers it.
type Approval struct {
	ID          string         `json:"id"`
	Tool        string         `json:"tool"`
	Description string         `json:"description"`
	Status      ApprovalStatus `json:"status"`
	Metadata    string         `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type ApprovalStore struct {
	db *DB
}

func NewApprovalStore(db *DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

func (s *ApprovalStore) Create(a *Approval) error {
	a.Status = ApprovalPending
	a.CreatedAt = time.Now().UTC()
	_, err := s.db.exec(
		`INSERT INTO mcp_approvals (id, tool, description, status, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Tool, a.Description, string(a.Status), a.Metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

// Status wraps domain.ErrNotFound when the row is gone.
func (s *ApprovalStore) Status(id string) (ApprovalStatus, error) {
	var status string
	err := s.db.queryRow(`SELECT status FROM mcp_approvals WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("approval %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("approval status: %w", err)
	}
	return ApprovalStatus(status), nil
}

// Resolve marks a pending approval as approved or rejected.
func (s *ApprovalStore) Resolve(id string, approved bool) error {
	status := ApprovalRejected
	if approved {
		status = ApprovalApproved
	}
	res, err := s.db.exec(
		`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = ?`,
		string(status), id, string(ApprovalPending),
	)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("approval %s not pending", id)
	}
	return nil
}

func (s *ApprovalStore) Delete(id string) error {
	_, err := s.db.exec(`DELETE FROM mcp_approvals WHERE id = ?`, id)
	return err
}

func (s *ApprovalStore) ListPending() ([]Approval, error) {
	rows, err := s.db.query(
		`SELECT id, tool, description, status, metadata, created_at FROM mcp_approvals WHERE status = ? ORDER BY created_at ASC`,
		string(ApprovalPending),
	)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []Approval
	for rows.Next() {
		var a Approval
		var status string
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &status, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Status = ApprovalStatus(status)
		out = append(out, a)
	}
	return out, rows.Err()
}
