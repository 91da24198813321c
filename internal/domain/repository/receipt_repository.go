package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
)

var (
	// ErrNotFound is returned by writes that target a missing row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateReceiptNumber is returned when an insert reuses a receipt number
	ErrDuplicateReceiptNumber = errors.New("receipt number already exists")
)

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// Create inserts a receipt whose number has already been allocated
	Create(ctx context.Context, receipt *entity.Receipt) error
	// GetByID returns nil, nil when the receipt does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	// List returns every receipt, newest first
	List(ctx context.Context) ([]entity.Receipt, error)
	// Update replaces the mutable fields; number and creation time are left alone
	Update(ctx context.Context, receipt *entity.Receipt) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MaxReceiptNumber returns 0 when no receipt exists
	MaxReceiptNumber(ctx context.Context) (int64, error)
}

// SequenceRepository hands out monotonically increasing numbers
type SequenceRepository interface {
	// Advance atomically increments the named counter and returns the new value.
	// The result is never below floor nor below any stored receipt number + 1.
	Advance(ctx context.Context, name string, floor int64) (int64, error)
	// Current returns the last value issued, 0 if the counter was never used
	Current(ctx context.Context, name string) (int64, error)
}

// DocumentCache stores rendered receipt documents
type DocumentCache interface {
	// Get returns ErrCacheMiss when the key is absent or expired
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ErrCacheMiss signals an absent cache entry
var ErrCacheMiss = errors.New("cache miss")
