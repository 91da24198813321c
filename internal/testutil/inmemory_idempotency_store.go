package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
)

// InMemoryIdempotencyStore implements repository.IdempotencyRepository
type InMemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey

	// Err, when set, is returned by every call
	Err error
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{keys: make(map[string]*entity.IdempotencyKey)}
}

func (s *InMemoryIdempotencyStore) GetByKey(_ context.Context, key, endpoint string) (*entity.IdempotencyKey, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keys[endpoint+"|"+key]; ok {
		c := *k
		return &c, nil
	}
	return nil, nil
}

func (s *InMemoryIdempotencyStore) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := ikey.Endpoint + "|" + ikey.Key
	if existing, ok := s.keys[id]; ok && !existing.IsExpired() {
		return nil
	}
	c := *ikey
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.keys[id] = &c
	return nil
}

func (s *InMemoryIdempotencyStore) DeleteExpired(_ context.Context) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, k := range s.keys {
		if k.IsExpired() {
			delete(s.keys, id)
		}
	}
	return nil
}

// Len reports how many keys are stored
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
