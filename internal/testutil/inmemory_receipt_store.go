package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
	"github.com/sangkips/schoolfee-receipts/internal/domain/repository"
)

// InMemoryReceiptStore implements repository.ReceiptRepository with the same
// guarantees as the database: hooks run, numbers are unique.
type InMemoryReceiptStore struct {
	mu       sync.RWMutex
	receipts map[uuid.UUID]*entity.Receipt
	clock    *Clock

	// Err, when set, is returned by every call
	Err error
}

// NewInMemoryReceiptStore creates a new in-memory receipt store
func NewInMemoryReceiptStore() *InMemoryReceiptStore {
	return &InMemoryReceiptStore{
		receipts: make(map[uuid.UUID]*entity.Receipt),
		clock:    NewClock(),
	}
}

func copyReceipt(r *entity.Receipt) *entity.Receipt {
	if r == nil {
		return nil
	}
	c := *r
	c.FeeItems = lo.Map(r.FeeItems, func(item entity.FeeItem, _ int) entity.FeeItem { return item })
	return &c
}

func (s *InMemoryReceiptStore) Create(_ context.Context, r *entity.Receipt) error {
	if s.Err != nil {
		return s.Err
	}
	if err := r.BeforeSave(nil); err != nil {
		return err
	}
	if err := r.BeforeCreate(nil); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.receipts {
		if existing.ReceiptNumber == r.ReceiptNumber {
			return repository.ErrDuplicateReceiptNumber
		}
	}

	now := s.clock.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	s.receipts[r.ID] = copyReceipt(r)
	return nil
}

func (s *InMemoryReceiptStore) GetByID(_ context.Context, id uuid.UUID) (*entity.Receipt, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyReceipt(s.receipts[id]), nil
}

func (s *InMemoryReceiptStore) List(_ context.Context) ([]entity.Receipt, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Receipt, 0, len(s.receipts))
	for _, r := range s.receipts {
		out = append(out, *copyReceipt(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ReceiptNumber > out[j].ReceiptNumber
	})
	return out, nil
}

func (s *InMemoryReceiptStore) Update(_ context.Context, r *entity.Receipt) error {
	if s.Err != nil {
		return s.Err
	}
	if err := r.BeforeSave(nil); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.receipts[r.ID]
	if !ok {
		return repository.ErrNotFound
	}

	updated := copyReceipt(r)
	updated.ReceiptNumber = stored.ReceiptNumber
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = s.clock.Now()
	s.receipts[r.ID] = updated

	r.ReceiptNumber = updated.ReceiptNumber
	r.CreatedAt = updated.CreatedAt
	r.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s *InMemoryReceiptStore) Delete(_ context.Context, id uuid.UUID) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.receipts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.receipts, id)
	return nil
}

func (s *InMemoryReceiptStore) MaxReceiptNumber(_ context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var highest int64
	for _, r := range s.receipts {
		highest = max(highest, r.ReceiptNumber)
	}
	return highest, nil
}

// Put stores r as-is, bypassing hooks. Used to seed odd data.
func (s *InMemoryReceiptStore) Put(r *entity.Receipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.clock.Now()
	}
	s.receipts[r.ID] = copyReceipt(r)
}

// Clock hands out strictly increasing timestamps so ordering is stable
type Clock struct {
	mu   sync.Mutex
	next time.Time
}

// NewClock starts at a fixed instant
func NewClock() *Clock {
	return &Clock{next: time.Date(2026, time.October, 18, 8, 0, 0, 0, time.UTC)}
}

// Now returns the current tick and advances by one second
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Second)
	return t
}
