// Package settings persists window geometry, behaviour toggles and the
// favorites list in a small JSON file next to the executable.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FileName is the settings file created in the application directory
const FileName = "appsettings.json"

// Geometry lower bounds applied on load
const (
	MinHeight = 600
	MinWidth  = 1000
)

// Settings is the persisted state
type Settings struct {
	SizeY           int      `json:"SizeY"`
	SizeX           int      `json:"SizeX"`
	PositionX       int      `json:"PositionX"`
	PositionY       int      `json:"PositionY"`
	CloseOnApply    bool     `json:"CloseOnApply"`
	QueueFolders    bool     `json:"QueueFolders"`
	FavoriteFolders []string `json:"FavoriteFolders"`
}

// Default returns the settings used when no file exists yet
func Default() Settings {
	return Settings{
		SizeY:           MinHeight,
		SizeX:           MinWidth,
		FavoriteFolders: []string{},
	}
}

// Clamp pulls geometry back into its allowed range
func (s *Settings) Clamp() {
	s.SizeY = max(s.SizeY, MinHeight)
	s.SizeX = max(s.SizeX, MinWidth)
	s.PositionX = max(s.PositionX, 0)
	s.PositionY = max(s.PositionY, 0)
	if s.FavoriteFolders == nil {
		s.FavoriteFolders = []string{}
	}
}

// Manager keeps an in-memory copy of the settings and writes it through on
// every change. ApplyToSubfolders lives only for the session.
type Manager struct {
	mu   sync.Mutex
	path string
	s    Settings

	applyToSubfolders bool
}

// NewManager creates a Manager for the settings file at path
func NewManager(path string) *Manager {
	return &Manager{path: path, s: Default()}
}

// NewManagerIn creates a Manager for FileName inside dir
func NewManagerIn(dir string) *Manager {
	return NewManager(filepath.Join(dir, FileName))
}

// Path returns the settings file location
func (m *Manager) Path() string {
	return m.path
}

// Load reads the settings from disk. A missing file keeps the defaults;
// fields absent from the file take zero values before clamping.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.s = Default()
		return nil
	}
	if err != nil {
		return err
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s.Clamp()
	m.s = s
	return nil
}

// Save writes the current settings to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save()
}

func (m *Manager) save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

// Get returns a copy of the current settings
func (m *Manager) Get() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.s
	s.FavoriteFolders = slices.Clone(m.s.FavoriteFolders)
	return s
}

func (m *Manager) update(fn func(*Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.s)
	return m.save()
}

// SetGeometry records window size and position
func (m *Manager) SetGeometry(width, height, x, y int) error {
	return m.update(func(s *Settings) {
		s.SizeX, s.SizeY = width, height
		s.PositionX, s.PositionY = x, y
	})
}

// CloseOnApply reports whether the app should exit after applying
func (m *Manager) CloseOnApply() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.CloseOnApply
}

// SetCloseOnApply updates and persists the close-on-apply toggle
func (m *Manager) SetCloseOnApply(v bool) error {
	return m.update(func(s *Settings) { s.CloseOnApply = v })
}

// QueueFolders reports whether queue mode is on
func (m *Manager) QueueFolders() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.QueueFolders
}

// SetQueueFolders updates and persists the queue toggle
func (m *Manager) SetQueueFolders(v bool) error {
	return m.update(func(s *Settings) { s.QueueFolders = v })
}

// FavoriteFolders returns the favorites as paths relative to the cache
func (m *Manager) FavoriteFolders() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.s.FavoriteFolders)
}

// SetFavoriteFolders replaces and persists the favorites list
func (m *Manager) SetFavoriteFolders(relPaths []string) error {
	return m.update(func(s *Settings) {
		s.FavoriteFolders = slices.Clone(relPaths)
		if s.FavoriteFolders == nil {
			s.FavoriteFolders = []string{}
		}
	})
}

// ApplyToSubfolders is not persisted
func (m *Manager) ApplyToSubfolders() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyToSubfolders
}

// SetApplyToSubfolders changes the session-only subfolder toggle
func (m *Manager) SetApplyToSubfolders(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyToSubfolders = v
}
