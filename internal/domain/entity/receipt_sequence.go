package entity

import "time"

// ReceiptSequenceName is the row that numbers receipts
const ReceiptSequenceName = "receipt_number"

// ReceiptSequence holds the last value issued by a named counter.
// The value only grows, so numbers freed by deletes are never handed out again.
type ReceiptSequence struct {
	Name      string    `gorm:"primaryKey;size:64"`
	LastValue int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the ReceiptSequence model
func (ReceiptSequence) TableName() string {
	return "receipt_sequences"
}
