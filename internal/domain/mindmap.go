package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownNode   = errors.New("unknown node")
	ErrDuplicateEdge = errors.New("edge already exists")
)

// Mindmap is one canvas. Its nodes and edges live in the ElementStore.
type Mindmap struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ViewportX    float64   `json:"viewportX"`
	ViewportY    float64   `json:"viewportY"`
	ViewportZoom float64   `json:"viewportZoom"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Flow is the raw node/edge document exchanged with the web UI, files and agents.
type Flow struct {
	Nodes []Node `json:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" validate:"dive"`
}

// MindmapState is everything the frontend needs to render a canvas.
type MindmapState struct {
	Mindmap      Mindmap `json:"mindmap"`
	Nodes        []Node  `json:"nodes"`
	Edges        []Edge  `json:"edges"`
	CanUndo      bool    `json:"canUndo"`
	CanRedo      bool    `json:"canRedo"`
	HistoryIndex int     `json:"historyIndex"`
	HistoryLen   int     `json:"historyLen"`
}

type MindmapStore interface {
	CreateMindmap(m *Mindmap) error
	GetMindmap(id string) (*Mindmap, error)
	ListMindmaps() ([]Mindmap, error)
	UpdateMindmap(m *Mindmap) error
	DeleteMindmap(id string) error
}

type ElementStore interface {
	ListNodes(mindmapID string) ([]Node, error)
	ListEdges(mindmapID string) ([]Edge, error)
	ReplaceElements(mindmapID string, nodes []Node, edges []Edge) error
	DeleteElements(mindmapID string) error
}
