package service

import (
	"mindmap/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// App Settings Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves and restores the main Wails window size and the last opened
// mindmap between sessions. Stored as key-value rows in app_settings.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SettingsService persists UI preferences between sessions.
type SettingsService struct {
	store *storage.SettingsStore
	// fallback size, usually from config
	defaults WindowSize
}

// NewSettingsService creates a SettingsService. A zero defaults value
// falls back to 1280x800.
func NewSettingsService(store *storage.SettingsStore, defaults WindowSize) *SettingsService {
	if defaults.Width < minWindowWidth {
		defaults.Width = defaultWindowWidth
	}
	if defaults.Height < minWindowHeight {
		defaults.Height = defaultWindowHeight
	}
	return &SettingsService{store: store, defaults: defaults}
}

const (
	settingWindowWidth   = "window_width"
	settingWindowHeight  = "window_height"
	settingActiveMindmap = "active_mindmap"
	defaultWindowWidth   = 1280
	defaultWindowHeight  = 800
	minWindowWidth       = 800
	minWindowHeight      = 600
)

// LoadWindowSize returns the saved window dimensions, or the defaults.
func (s *SettingsService) LoadWindowSize() WindowSize {
	if s.store == nil {
		return s.defaults
	}
	w := s.store.GetInt(settingWindowWidth, s.defaults.Width)
	h := s.store.GetInt(settingWindowHeight, s.defaults.Height)
	if w < minWindowWidth {
		w = s.defaults.Width
	}
	if h < minWindowHeight {
		h = s.defaults.Height
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the current window dimensions.
func (s *SettingsService) SaveWindowSize(width, height int) error {
	if err := s.store.SetInt(settingWindowWidth, width); err != nil {
		return err
	}
	return s.store.SetInt(settingWindowHeight, height)
}

// ActiveMindmap returns the id of the last opened mindmap, or "".
func (s *SettingsService) ActiveMindmap() string {
	if s.store == nil {
		return ""
	}
	id, _, _ := s.store.Get(settingActiveMindmap)
	return id
}

func (s *SettingsService) SetActiveMindmap(id string) error {
	return s.store.Set(settingActiveMindmap, id)
}
