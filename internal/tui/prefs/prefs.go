// Package prefs persists UI preferences as a small durable key-value file.
package prefs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// KeyDarkMode maps to "true"/"false"; read once at startup, written on
// every toggle.
const KeyDarkMode = "darkMode"

const defaultDebounce = 1 * time.Second

// Manager owns one preference file. Writes are debounced and atomic.
type Manager struct {
	path string

	mu       sync.Mutex
	values   map[string]string
	dirty    bool
	timer    *time.Timer
	debounce time.Duration
}

// New creates a Manager backed by path. An empty path keeps preferences
// in memory only.
func New(path string) *Manager {
	return &Manager{
		path:     path,
		values:   make(map[string]string),
		debounce: defaultDebounce,
	}
}

// Load reads the preference file. A missing file is not an error.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		return nil
	}

	payload, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(payload) == 0 {
		return nil
	}

	loaded := make(map[string]string)
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	m.values = loaded
	m.dirty = false
	return nil
}

// Get returns the stored value for key.
func (m *Manager) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// GetBool returns the stored boolean for key, or fallback.
func (m *Manager) GetBool(key string, fallback bool) bool {
	v, ok := m.Get(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// Set stores a value and schedules a save.
func (m *Manager) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == "" {
		return
	}
	m.values[key] = value
	m.markDirtyLocked()
}

// SetBool stores a boolean as "true"/"false" and schedules a save.
func (m *Manager) SetBool(key string, value bool) {
	m.Set(key, strconv.FormatBool(value))
}

// SaveNow writes the preference file immediately.
func (m *Manager) SaveNow() error {
	m.mu.Lock()
	if m.path == "" {
		m.mu.Unlock()
		return nil
	}
	snapshot := make(map[string]string, len(m.values))
	for k, v := range m.values {
		snapshot[k] = v
	}
	m.dirty = false
	m.mu.Unlock()

	if err := writeAtomicJSON(m.path, snapshot); err != nil {
		m.mu.Lock()
		m.dirty = true
		m.mu.Unlock()
		return err
	}
	return nil
}

// Close flushes any pending write.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	needsSave := m.dirty
	m.mu.Unlock()
	if !needsSave {
		return nil
	}
	return m.SaveNow()
}

func (m *Manager) markDirtyLocked() {
	m.dirty = true
	if m.path == "" {
		return
	}
	if m.timer == nil {
		m.timer = time.AfterFunc(m.debounce, func() {
			_ = m.SaveNow()
		})
		return
	}
	_ = m.timer.Reset(m.debounce)
}

func writeAtomicJSON(path string, values map[string]string) error {
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
