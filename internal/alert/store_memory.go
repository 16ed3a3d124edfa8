package alert

import (
	"context"
	"fmt"
	"sort"
	"sync"

	id "aidtrack/pkg/domain"
	"aidtrack/pkg/platform/sentinel"
)

// InMemoryStore keeps alerts in memory for tests/dev.
type InMemoryStore struct {
	mu     sync.RWMutex
	alerts map[id.AlertID]*Alert
}

// NewInMemoryStore constructs an empty in-memory alert store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{alerts: make(map[id.AlertID]*Alert)}
}

func (s *InMemoryStore) Create(_ context.Context, a *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.alerts[a.ID] = &cp
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, alertID id.AlertID) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.alerts[alertID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, fmt.Errorf("alert %s: %w", alertID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) UpdateTransition(_ context.Context, a *Alert, from Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.alerts[a.ID]
	if !ok {
		return fmt.Errorf("alert %s: %w", a.ID, sentinel.ErrNotFound)
	}
	if current.Status != from {
		return fmt.Errorf("alert %s moved from %s to %s concurrently: %w",
			a.ID, from, current.Status, sentinel.ErrInvalidState)
	}
	cp := *a
	s.alerts[a.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, alertID id.AlertID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[alertID]; !ok {
		return fmt.Errorf("alert %s: %w", alertID, sentinel.ErrNotFound)
	}
	delete(s.alerts, alertID)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, status Status) ([]*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Alert
	for _, a := range s.alerts {
		if status != "" && a.Status != status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
