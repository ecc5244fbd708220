package battle

import (
	"fmt"
	"sort"
	"sync"
)

// Engine is the registry of live matches. It is safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	matches map[string]*Match
}

// NewEngine creates an empty Engine.
func NewEngine() *Engine {
	return &Engine{matches: make(map[string]*Match)}
}

// Add registers m under its battle id.
//
// Postcondition: returns ErrDuplicateID if a match with the same id is registered.
func (e *Engine) Add(m *Match) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.matches[m.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, m.ID())
	}
	e.matches[m.ID()] = m
	return nil
}

// Get returns the match with the given id, or (nil, false).
func (e *Engine) Get(id string) (*Match, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.matches[id]
	return m, ok
}

// Remove unregisters id. Removing an unknown id is a no-op.
func (e *Engine) Remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.matches, id)
}

func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.matches)
}

// IDs returns registered match ids in sorted order.
func (e *Engine) IDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.matches))
	for id := range e.matches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CloseAll closes and unregisters every match.
func (e *Engine) CloseAll() {
	e.mu.Lock()
	matches := make([]*Match, 0, len(e.matches))
	for _, m := range e.matches {
		matches = append(matches, m)
	}
	e.matches = make(map[string]*Match)
	e.mu.Unlock()

	for _, m := range matches {
		m.Close()
	}
}
