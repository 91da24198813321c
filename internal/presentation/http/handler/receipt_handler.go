package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sangkips/schoolfee-receipts/internal/application/service"
	"github.com/sangkips/schoolfee-receipts/internal/domain/entity"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/dto/request"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/dto/response"
	"github.com/sangkips/schoolfee-receipts/pkg/apperror"
)

const exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReceiptHandler handles receipt-related HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
	renderService  *service.RenderService
	exportService  *service.ExportService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(
	receiptService *service.ReceiptService,
	renderService *service.RenderService,
	exportService *service.ExportService,
) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		renderService:  renderService,
		exportService:  exportService,
	}
}

// List handles listing receipts, newest first
func (h *ReceiptHandler) List(c *gin.Context) {
	receipts, err := h.receiptService.ListReceipts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipts retrieved successfully", receipts)
}

// Create handles issuing a new receipt
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req request.ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}

	receipt, err := h.receiptService.CreateReceipt(c.Request.Context(), receiptInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt created successfully", receipt)
}

// Get handles getting a single receipt
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := receiptID(c)
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// Update handles replacing the editable fields of a receipt
func (h *ReceiptHandler) Update(c *gin.Context) {
	id, ok := receiptID(c)
	if !ok {
		return
	}

	var req request.ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}

	receipt, err := h.receiptService.UpdateReceipt(c.Request.Context(), id, receiptInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt updated successfully", receipt)
}

// Delete handles permanently removing a receipt
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, ok := receiptID(c)
	if !ok {
		return
	}

	if err := h.receiptService.DeleteReceipt(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt deleted successfully", gin.H{"id": id})
}

// NextNumber reports the number the next receipt is expected to receive
func (h *ReceiptHandler) NextNumber(c *gin.Context) {
	next := h.receiptService.NextReceiptNumber(c.Request.Context())
	response.OK(c, "Next receipt number retrieved successfully", gin.H{"nextReceiptNumber": next})
}

// Download handles rendering a receipt as a PDF or printable HTML attachment
func (h *ReceiptHandler) Download(c *gin.Context) {
	id, ok := receiptID(c)
	if !ok {
		return
	}

	var query request.DownloadQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, apperror.NewBadRequestError("Format must be one of: html, pdf"))
		return
	}

	rendered, err := h.renderService.RenderReceipt(c.Request.Context(), id, query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, rendered.Filename, rendered.Document.ContentType(), rendered.Document.Body)
}

// Export handles downloading every receipt as a spreadsheet
func (h *ReceiptHandler) Export(c *gin.Context) {
	data, err := h.exportService.ExportReceipts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, "receipts.xlsx", exportContentType, data)
}

func receiptInput(req *request.ReceiptRequest) *service.ReceiptInput {
	input := &service.ReceiptInput{
		StudentName:   req.StudentName,
		ClassLevel:    req.ClassLevel,
		Term:          req.Term,
		Session:       req.Session,
		PaymentMethod: req.PaymentMethod,
		FeeItems: lo.Map(req.FeeItems, func(item request.FeeItemRequest, _ int) entity.FeeItem {
			return entity.FeeItem{Title: item.Title, Amount: item.Amount}
		}),
	}
	if req.ReceiptStyle != nil {
		input.ReceiptStyle = entity.ReceiptStyle{
			LogoURL:      req.ReceiptStyle.LogoURL,
			PrimaryColor: req.ReceiptStyle.PrimaryColor,
			FooterNote:   req.ReceiptStyle.FooterNote,
		}
	}
	return input
}
