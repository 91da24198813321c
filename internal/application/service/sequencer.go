package service

import (
	"context"

	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
	"github.com/sangkips/schoolfee-receipts/internal/domain/repository"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
)

// ReceiptNumberFloor is the first receipt number ever issued
const ReceiptNumberFloor int64 = 1001

// NextAfter returns the number that follows current, never below the floor
func NextAfter(current int64) int64 {
	if current < ReceiptNumberFloor {
		return ReceiptNumberFloor
	}
	return current + 1
}

// Sequencer assigns receipt numbers
type Sequencer struct {
	receiptRepo  repository.ReceiptRepository
	sequenceRepo repository.SequenceRepository
	log          *logger.Logger
}

// NewSequencer creates a new receipt number sequencer
func NewSequencer(
	receiptRepo repository.ReceiptRepository,
	sequenceRepo repository.SequenceRepository,
	log *logger.Logger,
) *Sequencer {
	return &Sequencer{
		receiptRepo:  receiptRepo,
		sequenceRepo: sequenceRepo,
		log:          log,
	}
}

// NextReceiptNumber reports the number the next receipt is expected to get.
// It never fails: if receipts cannot be read the floor is returned, and a
// missing counter only loses the memory of deleted numbers.
func (s *Sequencer) NextReceiptNumber(ctx context.Context) int64 {
	highest, err := s.receiptRepo.MaxReceiptNumber(ctx)
	if err != nil {
		s.log.Warnw("failed to read highest receipt number", "error", err)
		return ReceiptNumberFloor
	}

	issued, err := s.sequenceRepo.Current(ctx, entity.ReceiptSequenceName)
	if err != nil {
		s.log.Warnw("failed to read receipt sequence", "error", err)
		issued = 0
	}

	return NextAfter(max(highest, issued))
}

// Allocate reserves a fresh receipt number. The atomic counter is the source
// of truth; if it is unavailable the peeked value is used and the unique
// index on receipt_number catches any collision.
func (s *Sequencer) Allocate(ctx context.Context) int64 {
	n, err := s.sequenceRepo.Advance(ctx, entity.ReceiptSequenceName, ReceiptNumberFloor)
	if err == nil && n >= ReceiptNumberFloor {
		return n
	}
	if err != nil {
		s.log.Warnw("receipt sequence unavailable, falling back to max scan", "error", err)
	} else {
		s.log.Warnw("receipt sequence returned a value below the floor", "value", n)
	}
	return s.NextReceiptNumber(ctx)
}
