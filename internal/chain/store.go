package chain

import (
	"sync"

	"github.com/veracitor/veracity/internal/model"
)

// Store persists fingerprint records. Implementations must be append-only:
// records are never mutated or deleted through this interface.
type Store interface {
	// LoadLatest returns the most recent record for the identity, or nil
	// when the identity has no history.
	LoadLatest(identity string) (*model.FingerprintRecord, error)

	// LoadChain returns all records for the identity ordered by Seq
	// ascending (root first).
	LoadChain(identity string) ([]model.FingerprintRecord, error)

	// Append adds one record to the identity's chain.
	Append(record model.FingerprintRecord) error

	// Close releases store resources.
	Close() error
}

// MemoryStore keeps chains in process memory. Chains are stored as
// per-identity slices with index-based traversal — ownership stays
// explicit and there are no cyclic references.
type MemoryStore struct {
	mu     sync.RWMutex
	chains map[string][]model.FingerprintRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chains: make(map[string][]model.FingerprintRecord)}
}

// LoadLatest returns the newest record for the identity
func (s *MemoryStore) LoadLatest(identity string) (*model.FingerprintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.chains[identity]
	if len(records) == 0 {
		return nil, nil
	}
	latest := records[len(records)-1]
	return &latest, nil
}

// LoadChain returns the identity's full chain, root first
func (s *MemoryStore) LoadChain(identity string) ([]model.FingerprintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.chains[identity]
	out := make([]model.FingerprintRecord, len(records))
	copy(out, records)
	return out, nil
}

// Append adds a record to the identity's chain
func (s *MemoryStore) Append(record model.FingerprintRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chains[record.Identity] = append(s.chains[record.Identity], record)
	return nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
