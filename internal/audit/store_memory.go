package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps audit records in memory for tests/dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewInMemoryStore constructs an empty in-memory audit store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, entity, entityID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.Entity == entity && (entityID == "" || r.EntityID == entityID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]Record, 0, limit)
	for i := len(s.records) - 1; i >= len(s.records)-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// All returns every record in append order. Test helper.
func (s *InMemoryStore) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
