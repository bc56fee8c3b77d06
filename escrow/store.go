package escrow

import (
	"fmt"
	"sync"
)

// PoolStore persists pool records and the per-depositor wallet index.
//
// Implementations must treat every Put as atomic and must not alias stored
// records with the values returned by Get or List; the ledger mutates copies
// and commits them in a single Put so that a failed operation retains
// nothing.
type PoolStore interface {
	// PutPool stores or replaces a pool record.
	PutPool(p *Pool) error

	// PutPoolWithRef stores the pool record and appends a wallet index
	// entry for the owner in a single atomic step.
	PutPoolWithRef(p *Pool, owner AccountID, ref ContributionRef) error

	// GetPool retrieves a pool by identifier.
	GetPool(id PoolID) (*Pool, error)

	// ListPools returns all stored pools.
	ListPools() ([]*Pool, error)

	// WalletRefs returns the owner's contribution references in acceptance
	// order.
	WalletRefs(owner AccountID) ([]ContributionRef, error)
}

// MemPoolStore is an in-memory implementation of PoolStore.
type MemPoolStore struct {
	mu      sync.RWMutex
	pools   map[PoolID]*Pool
	wallets map[AccountID][]ContributionRef
}

// Compile-time interface check.
var _ PoolStore = (*MemPoolStore)(nil)

// NewMemPoolStore creates a new empty in-memory pool store.
func NewMemPoolStore() *MemPoolStore {
	return &MemPoolStore{
		pools:   make(map[PoolID]*Pool),
		wallets: make(map[AccountID][]ContributionRef),
	}
}

// PutPool stores or replaces a pool record.
func (s *MemPoolStore) PutPool(p *Pool) error {
	if p == nil {
		return fmt.Errorf("%w: nil pool", ErrPoolNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[p.ID] = p.clone()
	return nil
}

// PutPoolWithRef stores the pool record and appends a wallet index entry.
func (s *MemPoolStore) PutPoolWithRef(p *Pool, owner AccountID, ref ContributionRef) error {
	if p == nil {
		return fmt.Errorf("%w: nil pool", ErrPoolNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[p.ID] = p.clone()
	s.wallets[owner] = append(s.wallets[owner], ref)
	return nil
}

// GetPool retrieves a pool by identifier.
func (s *MemPoolStore) GetPool(id PoolID) (*Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[id]
	if !ok {
		return nil, ErrPoolNotFound
	}
	return p.clone(), nil
}

// ListPools returns all stored pools.
func (s *MemPoolStore) ListPools() ([]*Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pools := make([]*Pool, 0, len(s.pools))
	for _, p := range s.pools {
		pools = append(pools, p.clone())
	}
	return pools, nil
}

// WalletRefs returns the owner's contribution references in acceptance order.
func (s *MemPoolStore) WalletRefs(owner AccountID) ([]ContributionRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := s.wallets[owner]
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]ContributionRef, len(refs))
	copy(out, refs)
	return out, nil
}
