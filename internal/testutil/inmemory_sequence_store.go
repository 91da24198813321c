package testutil

import (
	"context"
	"sync"

	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
)

// InMemorySequenceStore implements repository.SequenceRepository on top of a
// receipt store, seeding itself from the highest stored number
type InMemorySequenceStore struct {
	mu       sync.Mutex
	values   map[string]int64
	receipts *InMemoryReceiptStore

	// Err, when set, is returned by every call
	Err error
	// Stuck, when set, makes Advance return the same value forever
	Stuck bool
}

// NewInMemorySequenceStore creates a new in-memory sequence store
func NewInMemorySequenceStore(receipts *InMemoryReceiptStore) *InMemorySequenceStore {
	return &InMemorySequenceStore{
		values:   make(map[string]int64),
		receipts: receipts,
	}
}

func (s *InMemorySequenceStore) Advance(ctx context.Context, name string, floor int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}

	highest, err := s.receipts.MaxReceiptNumber(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, seeded := s.values[name]
	if seeded && s.Stuck {
		return current, nil
	}
	next := max(floor, highest+1)
	if seeded {
		next = max(current+1, next)
	}
	s.values[name] = next
	return next, nil
}

func (s *InMemorySequenceStore) Current(_ context.Context, name string) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name], nil
}

// Set forces the counter, as if numbers up to value had been issued
func (s *InMemorySequenceStore) Set(value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[entity.ReceiptSequenceName] = value
}
