package client

import "time"

// FeeItem is one charge on a receipt
type FeeItem struct {
	Title  string  `json:"title"`
	Amount float64 `json:"amount"`
}

// ReceiptStyle customizes the rendered receipt
type ReceiptStyle struct {
	LogoURL      string `json:"logoUrl,omitempty"`
	PrimaryColor string `json:"primaryColor,omitempty"`
	FooterNote   string `json:"footerNote,omitempty"`
}

// Receipt is a receipt as the server returns it
type Receipt struct {
	ID            string       `json:"id"`
	ReceiptNumber int64        `json:"receiptNumber"`
	StudentName   string       `json:"studentName"`
	ClassLevel    string       `json:"classLevel"`
	Term          string       `json:"term"`
	Session       string       `json:"session"`
	PaymentMethod string       `json:"paymentMethod"`
	FeeItems      []FeeItem    `json:"feeItems"`
	TotalAmount   float64      `json:"totalAmount"`
	ReceiptStyle  ReceiptStyle `json:"receiptStyle"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// ReceiptInput is what a client may set; the server assigns the rest
type ReceiptInput struct {
	StudentName   string        `json:"studentName"`
	ClassLevel    string        `json:"classLevel"`
	Term          string        `json:"term"`
	Session       string        `json:"session"`
	PaymentMethod string        `json:"paymentMethod"`
	FeeItems      []FeeItem     `json:"feeItems"`
	ReceiptStyle  *ReceiptStyle `json:"receiptStyle,omitempty"`
}

// Download is a rendered receipt or export file
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}
