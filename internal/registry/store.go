package registry

import (
	"context"
	"fmt"
	"sync"

	id "aidtrack/pkg/domain"
	"aidtrack/pkg/platform/sentinel"
)

// Store provides read access to reference data. Registration and catalogue
// management happen in the upstream administration system; this service only
// validates and displays.
type Store interface {
	FindBeneficiary(ctx context.Context, beneficiaryID id.BeneficiaryID) (*Beneficiary, error)
	FindAidType(ctx context.Context, aidTypeID id.AidTypeID) (*AidType, error)
	ListBeneficiaries(ctx context.Context) ([]*Beneficiary, error)
	ListAidTypes(ctx context.Context) ([]*AidType, error)
}

// InMemoryStore keeps reference data in memory for tests/dev.
type InMemoryStore struct {
	mu            sync.RWMutex
	beneficiaries map[id.BeneficiaryID]*Beneficiary
	aidTypes      map[id.AidTypeID]*AidType
}

// NewInMemoryStore constructs an empty in-memory reference store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		beneficiaries: make(map[id.BeneficiaryID]*Beneficiary),
		aidTypes:      make(map[id.AidTypeID]*AidType),
	}
}

// SeedBeneficiary registers a beneficiary. Test/dev helper.
func (s *InMemoryStore) SeedBeneficiary(b *Beneficiary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beneficiaries[b.ID] = b
}

// SeedAidType registers an aid type. Test/dev helper.
func (s *InMemoryStore) SeedAidType(a *AidType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aidTypes[a.ID] = a
}

func (s *InMemoryStore) FindBeneficiary(_ context.Context, beneficiaryID id.BeneficiaryID) (*Beneficiary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.beneficiaries[beneficiaryID]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("beneficiary %s: %w", beneficiaryID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindAidType(_ context.Context, aidTypeID id.AidTypeID) (*AidType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.aidTypes[aidTypeID]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("aid type %s: %w", aidTypeID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListBeneficiaries(_ context.Context) ([]*Beneficiary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Beneficiary, 0, len(s.beneficiaries))
	for _, b := range s.beneficiaries {
		out = append(out, b)
	}
	return out, nil
}

func (s *InMemoryStore) ListAidTypes(_ context.Context) ([]*AidType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*AidType, 0, len(s.aidTypes))
	for _, a := range s.aidTypes {
		out = append(out, a)
	}
	return out, nil
}
