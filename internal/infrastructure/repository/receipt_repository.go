package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
	domainRepo "github.com/sangkips/schoolfee-receipts/internal/domain/repository"
	"gorm.io/gorm"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	err := r.db.WithContext(ctx).Create(receipt).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(domainRepo.ErrDuplicateReceiptNumber, "receipt number %d", receipt.ReceiptNumber)
	}
	return err
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) List(ctx context.Context) ([]entity.Receipt, error) {
	var receipts []entity.Receipt
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("receipt_number DESC").
		Find(&receipts).Error
	return receipts, err
}

func (r *receiptRepository) Update(ctx context.Context, receipt *entity.Receipt) error {
	result := r.db.WithContext(ctx).
		Model(receipt).
		Select("*").
		Omit("id", "receipt_number", "created_at").
		Updates(receipt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Receipt{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *receiptRepository) MaxReceiptNumber(ctx context.Context) (int64, error) {
	var highest int64
	err := r.db.WithContext(ctx).
		Model(&entity.Receipt{}).
		Select("COALESCE(MAX(receipt_number), 0)").
		Row().
		Scan(&highest)
	return highest, err
}
