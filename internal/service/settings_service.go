package service

import (
	"assetdash/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// UI Settings Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves and restores the main window size and the last opened asset
// between sessions, as key/value rows in app_settings.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SettingsService persists UI state between sessions.
type SettingsService struct {
	store *storage.SettingsStore
}

// NewSettingsService creates a SettingsService. A nil store makes every
// load return defaults.
func NewSettingsService(store *storage.SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	settingLastAsset    = "last_asset"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
	minWindowWidth      = 800
	minWindowHeight     = 600
)

// LoadWindowSize returns the saved window dimensions, or defaults when
// nothing usable is stored.
func (s *SettingsService) LoadWindowSize() WindowSize {
	if s.store == nil {
		return WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	}
	w := s.store.GetInt(settingWindowWidth, defaultWindowWidth)
	h := s.store.GetInt(settingWindowHeight, defaultWindowHeight)
	if w < minWindowWidth {
		w = defaultWindowWidth
	}
	if h < minWindowHeight {
		h = defaultWindowHeight
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the current window dimensions.
func (s *SettingsService) SaveWindowSize(width, height int) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SetInt(settingWindowWidth, width); err != nil {
		return err
	}
	return s.store.SetInt(settingWindowHeight, height)
}

// LastAsset returns the asset that was open when the app last closed.
func (s *SettingsService) LastAsset() string {
	if s.store == nil {
		return ""
	}
	v, _, _ := s.store.Get(settingLastAsset)
	return v
}

func (s *SettingsService) SetLastAsset(name string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Set(settingLastAsset, name)
}
