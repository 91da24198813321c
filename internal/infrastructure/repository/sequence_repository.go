package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
	domainRepo "github.com/sangkips/schoolfee-receipts/internal/domain/repository"
	"gorm.io/gorm"
)

// advanceSQL increments the counter in one statement. The first call seeds
// the row from the highest stored receipt so existing data is respected.
const advanceSQL = `
INSERT INTO receipt_sequences (name, last_value, updated_at)
VALUES (@name, GREATEST(@floor, (SELECT COALESCE(MAX(receipt_number), 0) + 1 FROM receipts)), NOW())
ON CONFLICT (name) DO UPDATE
SET last_value = GREATEST(receipt_sequences.last_value + 1, EXCLUDED.last_value),
    updated_at = NOW()
RETURNING last_value`

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) domainRepo.SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Advance(ctx context.Context, name string, floor int64) (int64, error) {
	var value int64
	row := r.db.WithContext(ctx).Raw(advanceSQL, map[string]interface{}{
		"name":  name,
		"floor": floor,
	}).Row()
	if err := row.Scan(&value); err != nil {
		return 0, errors.Wrapf(err, "advance sequence %s", name)
	}
	return value, nil
}

func (r *sequenceRepository) Current(ctx context.Context, name string) (int64, error) {
	var seq entity.ReceiptSequence
	err := r.db.WithContext(ctx).First(&seq, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}
