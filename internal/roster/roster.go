// Package roster defines where player rosters come from. A roster is the
// ordered list of card names a player brings to a battle.
package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoRoster is returned when an owner has no saved roster.
var ErrNoRoster = errors.New("no roster for owner")

// Source reads rosters.
type Source interface {
	// Roster returns ownerID's card names in slot order.
	Roster(ctx context.Context, ownerID string) ([]string, error)
}

// Store reads and replaces rosters.
type Store interface {
	Source
	// SetRoster replaces ownerID's roster with names.
	SetRoster(ctx context.Context, ownerID string, names []string) error
}

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	rosters map[string][]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rosters: make(map[string][]string)}
}

func (s *MemoryStore) Roster(_ context.Context, ownerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names, ok := s.rosters[ownerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRoster, ownerID)
	}
	return append([]string(nil), names...), nil
}

// SetRoster stores a copy of names. An empty list removes the roster.
func (s *MemoryStore) SetRoster(_ context.Context, ownerID string, names []string) error {
	if ownerID == "" {
		return errors.New("roster: owner id must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		delete(s.rosters, ownerID)
		return nil
	}
	s.rosters[ownerID] = append([]string(nil), names...)
	return nil
}
