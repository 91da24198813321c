package entity

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sangkips/schoolfee-receipts/internal/domain/enum"
	"github.com/sangkips/schoolfee-receipts/pkg/format"
	"github.com/sangkips/schoolfee-receipts/pkg/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPrimaryColor is the accent color when a receipt does not choose one
const DefaultPrimaryColor = "#000000"

// FeeItem is one charge on a receipt
type FeeItem struct {
	Title  string  `json:"title" label:"Fee item title" validate:"notblank,max=200"`
	Amount float64 `json:"amount" label:"Fee item amount" validate:"gt=0"`
}

// ReceiptStyle controls how a receipt looks when rendered
type ReceiptStyle struct {
	LogoURL      string `gorm:"size:2048" json:"logoUrl,omitempty" label:"Logo URL" validate:"omitempty,url"`
	PrimaryColor string `gorm:"size:16;not null;default:'#000000'" json:"primaryColor" label:"Primary color" validate:"required,hexcolor"`
	FooterNote   string `gorm:"type:text" json:"footerNote,omitempty" label:"Footer note" validate:"max=500"`
}

// Receipt is an issued school fee receipt
type Receipt struct {
	ID            uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiptNumber int64                        `gorm:"uniqueIndex;not null" json:"receiptNumber" label:"Receipt number" validate:"omitempty,gte=1"`
	StudentName   string                       `gorm:"size:255;not null" json:"studentName" label:"Student name" validate:"notblank,max=255"`
	ClassLevel    enum.ClassLevel              `gorm:"type:smallint;not null" json:"classLevel" label:"Class level" validate:"required,enum"`
	Term          enum.Term                    `gorm:"type:smallint;not null" json:"term" label:"Term" validate:"required,enum"`
	Session       string                       `gorm:"size:32;not null" json:"session" label:"Session" validate:"notblank,max=32"`
	PaymentMethod string                       `gorm:"size:64;not null" json:"paymentMethod" label:"Payment method" validate:"notblank,max=64"`
	FeeItems      datatypes.JSONSlice[FeeItem] `gorm:"type:jsonb;not null" json:"feeItems" label:"Fee item" validate:"required,min=1,dive"`
	TotalAmount   float64                      `gorm:"type:numeric(14,2);not null;check:chk_receipts_total_amount,total_amount >= 0" json:"totalAmount"`
	ReceiptStyle  ReceiptStyle                 `gorm:"embedded;embeddedPrefix:style_" json:"receiptStyle"`
	CreatedAt     time.Time                    `gorm:"not null;index" json:"createdAt"`
	UpdatedAt     time.Time                    `json:"updatedAt"`
}

// ComputeTotal sums the fee item amounts
func (r *Receipt) ComputeTotal() float64 {
	amounts := make([]float64, len(r.FeeItems))
	for i, item := range r.FeeItems {
		amounts[i] = item.Amount
	}
	return format.Total(amounts)
}

// Normalize fills defaults and derives the total from the fee items
func (r *Receipt) Normalize() {
	if r.ReceiptStyle.PrimaryColor == "" {
		r.ReceiptStyle.PrimaryColor = DefaultPrimaryColor
	}
	r.TotalAmount = r.ComputeTotal()
}

// Validate checks the receipt against its field rules. Failures are *validator.Error.
func (r *Receipt) Validate() error {
	return validator.Struct(r)
}

// BeforeSave keeps the stored total consistent and refuses invalid rows
func (r *Receipt) BeforeSave(tx *gorm.DB) error {
	r.Normalize()
	return r.Validate()
}

// BeforeCreate generates a UUID and requires an assigned receipt number
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ReceiptNumber < 1 {
		return errors.New("receipt number must be assigned before insert")
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}
