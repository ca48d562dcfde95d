// Package session maps session ids to their persisted conversations.
//
// Each session lives in <sessionsDir>/session_<id>_history.json; see package
// memory for the file format.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cicidi/product-sales-prediction/internal/memory"
)

// Info describes one stored session for listing.
type Info struct {
	ID        string
	Path      string
	Turns     int
	UpdatedAt string // timestamp of the last turn, empty when the session has none

	updated time.Time
}

// Manager caches open conversations by session id.
type Manager struct {
	sessionsDir string
	logger      *slog.Logger
	cache       sync.Map // id → *memory.Conversation

	mu sync.Mutex // serialises first opens so one id never yields two conversations
}

// NewManager creates a Manager rooted at sessionsDir, creating it if needed.
func NewManager(sessionsDir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(sessionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}
	return &Manager{sessionsDir: sessionsDir, logger: logger}, nil
}

// Dir returns the sessions directory.
func (m *Manager) Dir() string { return m.sessionsDir }

// GetOrCreate returns the cached conversation for id, loading it from disk
// or starting an empty one.
func (m *Manager) GetOrCreate(id string) (*memory.Conversation, error) {
	if v, ok := m.cache.Load(id); ok {
		return v.(*memory.Conversation), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.cache.Load(id); ok {
		return v.(*memory.Conversation), nil
	}

	c, err := memory.Open(m.sessionsDir, id, m.logger)
	if err != nil {
		return nil, err
	}
	m.cache.Store(id, c)
	return c, nil
}

// Invalidate drops id from the cache; the next GetOrCreate reloads from disk.
func (m *Manager) Invalidate(id string) {
	m.cache.Delete(id)
}

// ListSessions returns all stored sessions, most recently updated first.
func (m *Manager) ListSessions() []Info {
	paths, _ := filepath.Glob(filepath.Join(m.sessionsDir, "session_*_history.json"))

	out := make([]Info, 0, len(paths))
	for _, path := range paths {
		id, ok := memory.SessionIDFromPath(path)
		if !ok {
			continue
		}
		c, err := memory.Open(m.sessionsDir, id, m.logger)
		if err != nil {
			continue
		}
		info := Info{ID: id, Path: path, Turns: c.Len()}
		if recent := c.RecentWindow(1); len(recent) == 1 {
			info.UpdatedAt = recent[0].Timestamp
			if ts, err := recent[0].Time(); err == nil {
				info.updated = ts
			}
		}
		out = append(out, info)
	}

	// RFC3339Nano drops trailing zeros, so compare parsed times, not strings.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].updated.After(out[j].updated)
	})
	return out
}
