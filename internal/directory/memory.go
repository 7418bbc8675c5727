package directory

import (
	"context"
	"sync"
)

// Memory is an in-process directory for tests and standalone runs.
type Memory struct {
	mu      sync.RWMutex
	open    bool
	members map[int64]map[string]struct{}
	admins  map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		members: make(map[int64]map[string]struct{}),
		admins:  make(map[string]struct{}),
	}
}

// AllowAll makes every identity a member of every room. Standalone mode
// uses it when no external directory is configured.
func (m *Memory) AllowAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
}

func (m *Memory) Grant(room int64, user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[room] == nil {
		m.members[room] = make(map[string]struct{})
	}
	m.members[room][user] = struct{}{}
}

func (m *Memory) Revoke(room int64, user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members[room], user)
}

func (m *Memory) Promote(user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[user] = struct{}{}
}

func (m *Memory) IsMember(_ context.Context, room int64, user string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.open {
		return true, nil
	}
	_, ok := m.members[room][user]
	return ok, nil
}

func (m *Memory) IsAdmin(_ context.Context, _ int64, user string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.admins[user]
	return ok, nil
}
