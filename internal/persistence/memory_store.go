package persistence

import (
	"context"
	"strings"
	"sync"

	"github.com/jkoskel/refino/pkg/api"
)

// InMemoryStore is a simple, goroutine-safe implementation of
// api.MemoryStore and api.EventStore backed by slices. It is intended for
// tests and development; use the SQLite stores for durability.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []scopedEntry
	events  []api.RunEvent
}

type scopedEntry struct {
	scope api.MemoryScope
	entry api.MemoryEntry
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Ensure InMemoryStore implements the interfaces.
var _ api.MemoryStore = (*InMemoryStore)(nil)

var _ api.EventStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) Append(ctx context.Context, rec api.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range rec.Entries {
		s.entries = append(s.entries, scopedEntry{scope: rec.Scope, entry: e})
	}
	return nil
}

func (s *InMemoryStore) Search(ctx context.Context, scope api.MemoryScope, query string) ([]api.MemoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)

	var out []api.MemoryEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		se := s.entries[i]
		if se.scope != scope {
			continue
		}
		if !strings.Contains(strings.ToLower(se.entry.Content), needle) {
			continue
		}
		out = append(out, se.entry)
		if len(out) == api.MaxMemorySearchResults {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) AppendEvent(ctx context.Context, ev api.RunEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)
	return nil
}

func (s *InMemoryStore) ListEvents(ctx context.Context, runID string) ([]api.RunEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []api.RunEvent
	for _, ev := range s.events {
		if ev.RunID == runID {
			out = append(out, ev)
		}
	}
	return out, nil
}
