package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from wailsRuntime
// ─────────────────────────────────────────────────────────────

// Events emitted to the frontend.
const (
	EventMindmapChanged  = "mindmap:changed"  // nodes/edges replaced, payload MindmapEvent
	EventMindmapHistory  = "mindmap:history"  // cursor moved by undo/redo, payload MindmapEvent
	EventMindmapsChanged = "mindmaps:changed" // list created/renamed/deleted
	EventMindmapImported = "mindmap:imported" // watched file re-imported
)

// MindmapEvent is the payload of the per-mindmap events.
type MindmapEvent struct {
	MindmapID    string `json:"mindmapId"`
	Reason       string `json:"reason"`
	CanUndo      bool   `json:"canUndo"`
	CanRedo      bool   `json:"canRedo"`
	HistoryIndex int    `json:"historyIndex"`
	HistoryLen   int    `json:"historyLen"`
}

// EventEmitter is an interface for emitting events to the frontend.
// The App struct implements this by delegating to wailsRuntime.EventsEmit.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NopEmitter drops every event. Used when no frontend is attached.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions of one event, in order.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
