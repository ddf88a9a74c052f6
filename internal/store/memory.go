// Package store persists game event logs: an in-memory store for console
// games and the API, and a PostgreSQL store for durable history.
package store

import (
	"sync"

	"github.com/vdtran/werewolf-gm/internal/game"
)

// Memory keeps event logs per game in memory. It implements game.EventSink
// and serves the read side of the HTTP API.
type Memory struct {
	mu     sync.RWMutex
	events map[string][]game.Event
}

// NewMemory creates an empty in-memory event store.
func NewMemory() *Memory {
	return &Memory{events: make(map[string][]game.Event)}
}

// RecordEvent appends one event to the game's log.
func (m *Memory) RecordEvent(gameID string, ev game.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[gameID] = append(m.events[gameID], ev)
}

// Events returns a copy of the game's event log.
func (m *Memory) Events(gameID string) []game.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.events[gameID]
	out := make([]game.Event, len(src))
	copy(out, src)
	return out
}

// GameIDs lists every game with recorded events.
func (m *Memory) GameIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.events))
	for id := range m.events {
		out = append(out, id)
	}
	return out
}
