package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sangkips/schoolfee-receipts/internal/domain/repository"
	"github.com/sangkips/schoolfee-receipts/pkg/apperror"
	"github.com/sangkips/schoolfee-receipts/pkg/format"
	"github.com/xuri/excelize/v2"
)

const (
	receiptsSheet = "Receipts"
	feeItemsSheet = "Fee Items"
)

// ExportService writes receipts to a spreadsheet for the bursary
type ExportService struct {
	receiptRepo repository.ReceiptRepository
	location    *time.Location
}

// NewExportService creates a new export service
func NewExportService(receiptRepo repository.ReceiptRepository, location *time.Location) *ExportService {
	if location == nil {
		location = format.Location(format.DefaultTimezone)
	}
	return &ExportService{receiptRepo: receiptRepo, location: location}
}

// ExportReceipts builds an XLSX workbook with one row per receipt and one
// row per fee item, newest receipts first
func (s *ExportService) ExportReceipts(ctx context.Context) ([]byte, error) {
	receipts, err := s.receiptRepo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternalError(errors.Wrap(err, "list receipts for export"))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, apperror.NewInternalError(err)
	}
	if _, err := f.NewSheet(feeItemsSheet); err != nil {
		return nil, apperror.NewInternalError(err)
	}

	header := &excelize.Style{Font: &excelize.Font{Bold: true}}
	headerStyle, err := f.NewStyle(header)
	if err != nil {
		return nil, apperror.NewInternalError(err)
	}
	// 3 is the built-in "#,##0" format
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return nil, apperror.NewInternalError(err)
	}

	receiptHeader := []interface{}{
		"Receipt Number", "Student Name", "Class Level", "Term", "Session",
		"Payment Method", "Fee Items", "Total Amount", "Created",
	}
	itemHeader := []interface{}{"Receipt Number", "Student Name", "Item", "Amount"}

	if err := f.SetSheetRow(receiptsSheet, "A1", &receiptHeader); err != nil {
		return nil, apperror.NewInternalError(err)
	}
	if err := f.SetSheetRow(feeItemsSheet, "A1", &itemHeader); err != nil {
		return nil, apperror.NewInternalError(err)
	}
	_ = f.SetRowStyle(receiptsSheet, 1, 1, headerStyle)
	_ = f.SetRowStyle(feeItemsSheet, 1, 1, headerStyle)

	itemRow := 2
	for i, r := range receipts {
		row := []interface{}{
			format.ReceiptNumber(r.ReceiptNumber),
			r.StudentName,
			r.ClassLevel.String(),
			r.Term.String(),
			r.Session,
			r.PaymentMethod,
			len(r.FeeItems),
			r.TotalAmount,
			format.Date(r.CreatedAt, s.location),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(receiptsSheet, cell, &row); err != nil {
			return nil, apperror.NewInternalError(err)
		}

		for _, item := range r.FeeItems {
			line := []interface{}{format.ReceiptNumber(r.ReceiptNumber), r.StudentName, item.Title, item.Amount}
			cell, _ := excelize.CoordinatesToCellName(1, itemRow)
			if err := f.SetSheetRow(feeItemsSheet, cell, &line); err != nil {
				return nil, apperror.NewInternalError(err)
			}
			itemRow++
		}
	}

	if len(receipts) > 0 {
		last, _ := excelize.CoordinatesToCellName(8, len(receipts)+1)
		_ = f.SetCellStyle(receiptsSheet, "H2", last, amountStyle)
	}
	if itemRow > 2 {
		last, _ := excelize.CoordinatesToCellName(4, itemRow-1)
		_ = f.SetCellStyle(feeItemsSheet, "D2", last, amountStyle)
	}
	_ = f.SetColWidth(receiptsSheet, "A", "I", 18)
	_ = f.SetColWidth(feeItemsSheet, "A", "D", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperror.NewInternalError(errors.Wrap(err, "write workbook"))
	}
	return buf.Bytes(), nil
}
