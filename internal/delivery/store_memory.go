package delivery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	id "aidtrack/pkg/domain"
	"aidtrack/pkg/platform/sentinel"
)

// InMemoryStore stores deliveries in memory for tests/dev.
type InMemoryStore struct {
	mu         sync.RWMutex
	deliveries map[id.DeliveryID]*Delivery
}

// NewInMemoryStore constructs an empty in-memory delivery store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{deliveries: make(map[id.DeliveryID]*Delivery)}
}

func (s *InMemoryStore) Create(_ context.Context, d *Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.deliveries[d.ID] = &cp
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, deliveryID id.DeliveryID) (*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.deliveries[deliveryID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, fmt.Errorf("delivery %s: %w", deliveryID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Delete(_ context.Context, deliveryID id.DeliveryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveries[deliveryID]; !ok {
		return fmt.Errorf("delivery %s: %w", deliveryID, sentinel.ErrNotFound)
	}
	delete(s.deliveries, deliveryID)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Delivery, 0, len(s.deliveries))
	for _, d := range s.deliveries {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeliveredAt.After(out[j].DeliveredAt) })
	return out, nil
}

func (s *InMemoryStore) ListByBeneficiary(_ context.Context, beneficiaryID id.BeneficiaryID) ([]*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Delivery
	for _, d := range s.deliveries {
		if d.BeneficiaryID == beneficiaryID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeliveredAt.After(out[j].DeliveredAt) })
	return out, nil
}

func (s *InMemoryStore) LastInWindow(_ context.Context, beneficiaryID id.BeneficiaryID, aidTypeID id.AidTypeID, since, until time.Time, excludeID id.DeliveryID) (*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *Delivery
	for _, d := range s.deliveries {
		if d.ID == excludeID || d.BeneficiaryID != beneficiaryID || d.AidTypeID != aidTypeID {
			continue
		}
		if d.DeliveredAt.Before(since) || !d.DeliveredAt.Before(until) {
			continue
		}
		if best == nil || d.DeliveredAt.After(best.DeliveredAt) {
			best = d
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no delivery in window: %w", sentinel.ErrNotFound)
	}
	cp := *best
	return &cp, nil
}
