package request

import "github.com/sangkips/schoolfee-receipts/internal/domain/enum"

// ReceiptRequest is the body of create and update calls. Receipt number,
// total and timestamps are assigned by the server and have no field here.
type ReceiptRequest struct {
	StudentName   string               `json:"studentName"`
	ClassLevel    enum.ClassLevel      `json:"classLevel"`
	Term          enum.Term            `json:"term"`
	Session       string               `json:"session"`
	PaymentMethod string               `json:"paymentMethod"`
	FeeItems      []FeeItemRequest     `json:"feeItems"`
	ReceiptStyle  *ReceiptStyleRequest `json:"receiptStyle"`
}

// FeeItemRequest is one charge on a receipt
type FeeItemRequest struct {
	Title  string  `json:"title"`
	Amount float64 `json:"amount"`
}

// ReceiptStyleRequest customizes the rendered receipt
type ReceiptStyleRequest struct {
	LogoURL      string `json:"logoUrl"`
	PrimaryColor string `json:"primaryColor"`
	FooterNote   string `json:"footerNote"`
}

// DownloadQuery selects the document format of a download
type DownloadQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=html pdf"`
}
