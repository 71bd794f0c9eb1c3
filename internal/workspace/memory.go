// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pdiddy/peaks-engine/internal/peaks"
)

// MemoryStore keeps workspaces in a map for the life of the process. Get
// returns the same *peaks.Workspace that was Put.
type MemoryStore struct {
	notifier

	mu         sync.RWMutex
	workspaces map[string]*peaks.Workspace
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{workspaces: make(map[string]*peaks.Workspace)}
}

func (s *MemoryStore) Put(_ context.Context, name string, ws *peaks.Workspace) error {
	if err := checkPut(name, ws); err != nil {
		return err
	}

	s.mu.Lock()
	_, replaced := s.workspaces[name]
	s.workspaces[name] = ws
	s.mu.Unlock()

	kind := EventAdded
	if replaced {
		kind = EventReplaced
	}
	s.publish(Event{Kind: kind, Name: name, Peaks: ws.Number()})
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (*peaks.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return ws, nil
}

func (s *MemoryStore) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	_, ok := s.workspaces[name]
	delete(s.workspaces, name)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.publish(Event{Kind: EventRemoved, Name: name})
	return nil
}

func (s *MemoryStore) Names(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.workspaces))
	for name := range s.workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
