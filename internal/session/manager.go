package session

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Manager keeps a bounded set of sessions keyed by ID. The least recently
// used session is evicted once the limit is reached.
type Manager struct {
	cache   *lru.Cache[string, *Controller]
	factory func() *Controller
}

// NewManager creates a manager holding at most size sessions.
func NewManager(size int, factory func() *Controller) (*Manager, error) {
	cache, err := lru.New[string, *Controller](size)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return &Manager{cache: cache, factory: factory}, nil
}

// Create starts a new session and returns its ID.
func (m *Manager) Create() (string, *Controller) {
	id := uuid.NewString()
	c := m.factory()
	m.cache.Add(id, c)
	return id, c
}

// Get looks up a session.
func (m *Manager) Get(id string) (*Controller, bool) {
	return m.cache.Get(id)
}

// Remove drops a session.
func (m *Manager) Remove(id string) {
	m.cache.Remove(id)
}

// IDs lists live session IDs from least to most recently used.
func (m *Manager) IDs() []string {
	return m.cache.Keys()
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	return m.cache.Len()
}
