package receipt

import (
	"context"
	"fmt"
	"sync"

	id "aidtrack/pkg/domain"
	"aidtrack/pkg/platform/sentinel"
)

// Store persists receipts.
//
// Error contract: Create returns sentinel.ErrConflict (wrapped) when a
// receipt already exists for the delivery; Find and FindByDelivery return
// sentinel.ErrNotFound (wrapped) when no receipt matches.
type Store interface {
	Create(ctx context.Context, r *Receipt) error
	Find(ctx context.Context, receiptID id.ReceiptID) (*Receipt, error)
	FindByDelivery(ctx context.Context, deliveryID id.DeliveryID) (*Receipt, error)
	ExistsForDelivery(ctx context.Context, deliveryID id.DeliveryID) (bool, error)
	List(ctx context.Context) ([]*Receipt, error)
}

// InMemoryStore is a map-backed Store for tests and local development.
type InMemoryStore struct {
	mu         sync.RWMutex
	byID       map[id.ReceiptID]*Receipt
	byDelivery map[id.DeliveryID]*Receipt
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:       make(map[id.ReceiptID]*Receipt),
		byDelivery: make(map[id.DeliveryID]*Receipt),
	}
}

func (s *InMemoryStore) Create(_ context.Context, r *Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byDelivery[r.DeliveryID]; exists {
		return fmt.Errorf("receipt for delivery %s: %w", r.DeliveryID, sentinel.ErrConflict)
	}
	cp := *r
	s.byID[r.ID] = &cp
	s.byDelivery[r.DeliveryID] = &cp
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, receiptID id.ReceiptID) (*Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[receiptID]
	if !ok {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, sentinel.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) FindByDelivery(_ context.Context, deliveryID id.DeliveryID) (*Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byDelivery[deliveryID]
	if !ok {
		return nil, fmt.Errorf("receipt for delivery %s: %w", deliveryID, sentinel.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) ExistsForDelivery(_ context.Context, deliveryID id.DeliveryID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byDelivery[deliveryID]
	return ok, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Receipt, 0, len(s.byID))
	for _, r := range s.byID {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}
