package service

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
	"github.com/sangkips/schoolfee-receipts/internal/domain/enum"
	"github.com/sangkips/schoolfee-receipts/internal/domain/repository"
	"github.com/sangkips/schoolfee-receipts/pkg/apperror"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
	"github.com/sangkips/schoolfee-receipts/pkg/validator"
)

// createAttempts bounds how often a colliding receipt number is re-allocated
const createAttempts = 3

// ReceiptService handles receipt-related operations
type ReceiptService struct {
	receiptRepo repository.ReceiptRepository
	sequencer   *Sequencer
	log         *logger.Logger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	receiptRepo repository.ReceiptRepository,
	sequencer *Sequencer,
	log *logger.Logger,
) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		sequencer:   sequencer,
		log:         log,
	}
}

// ReceiptInput carries the client-editable fields of a receipt. Number,
// total and timestamps are never taken from clients.
type ReceiptInput struct {
	StudentName   string
	ClassLevel    enum.ClassLevel
	Term          enum.Term
	Session       string
	PaymentMethod string
	FeeItems      []entity.FeeItem
	ReceiptStyle  entity.ReceiptStyle
}

func (in *ReceiptInput) applyTo(r *entity.Receipt) {
	r.StudentName = in.StudentName
	r.ClassLevel = in.ClassLevel
	r.Term = in.Term
	r.Session = in.Session
	r.PaymentMethod = in.PaymentMethod
	r.FeeItems = in.FeeItems
	r.ReceiptStyle = in.ReceiptStyle
	r.Normalize()
}

// CreateReceipt validates the input, assigns the next receipt number and stores it
func (s *ReceiptService) CreateReceipt(ctx context.Context, input *ReceiptInput) (*entity.Receipt, error) {
	receipt := &entity.Receipt{}
	input.applyTo(receipt)
	if err := receipt.Validate(); err != nil {
		return nil, s.storeError(err)
	}

	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		receipt.ReceiptNumber = s.sequencer.Allocate(ctx)

		err := s.receiptRepo.Create(ctx, receipt)
		if err == nil {
			s.log.Infow("receipt created",
				"receipt_id", receipt.ID,
				"receipt_number", receipt.ReceiptNumber,
				"total_amount", receipt.TotalAmount,
			)
			return receipt, nil
		}
		if !errors.Is(err, repository.ErrDuplicateReceiptNumber) {
			return nil, s.storeError(err)
		}

		lastErr = err
		s.log.Warnw("receipt number collision",
			"receipt_number", receipt.ReceiptNumber,
			"attempt", attempt,
		)
	}

	return nil, apperror.NewDuplicateSequenceError(lastErr)
}

// ListReceipts returns every receipt, newest first
func (s *ReceiptService) ListReceipts(ctx context.Context) ([]entity.Receipt, error) {
	receipts, err := s.receiptRepo.List(ctx)
	if err != nil {
		return nil, s.storeError(err)
	}
	if receipts == nil {
		receipts = []entity.Receipt{}
	}
	return receipts, nil
}

// GetReceipt retrieves a receipt by ID
func (s *ReceiptService) GetReceipt(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err)
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// UpdateReceipt replaces the editable fields and recomputes the total.
// Receipt number and creation time are kept.
func (s *ReceiptService) UpdateReceipt(ctx context.Context, id uuid.UUID, input *ReceiptInput) (*entity.Receipt, error) {
	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	input.applyTo(receipt)
	if err := receipt.Validate(); err != nil {
		return nil, s.storeError(err)
	}

	if err := s.receiptRepo.Update(ctx, receipt); err != nil {
		return nil, s.storeError(err)
	}
	return receipt, nil
}

// DeleteReceipt permanently removes a receipt. Its number is not reissued.
func (s *ReceiptService) DeleteReceipt(ctx context.Context, id uuid.UUID) error {
	if err := s.receiptRepo.Delete(ctx, id); err != nil {
		return s.storeError(err)
	}
	s.log.Infow("receipt deleted", "receipt_id", id)
	return nil
}

// NextReceiptNumber peeks at the number the next receipt should receive
func (s *ReceiptService) NextReceiptNumber(ctx context.Context) int64 {
	return s.sequencer.NextReceiptNumber(ctx)
}

// storeError maps repository and validation failures onto application errors
func (s *ReceiptService) storeError(err error) error {
	var verr *validator.Error
	switch {
	case errors.As(err, &verr):
		return apperror.NewValidationError(lo.Map(verr.Fields, func(f validator.FieldError, _ int) apperror.FieldError {
			return apperror.FieldError{Field: f.Field, Message: f.Message}
		}))
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFoundError("Receipt")
	case errors.Is(err, repository.ErrDuplicateReceiptNumber):
		return apperror.NewDuplicateSequenceError(err)
	case apperror.IsAppError(err):
		return err
	default:
		return apperror.NewInternalError(errors.Wrap(err, "receipt store"))
	}
}
