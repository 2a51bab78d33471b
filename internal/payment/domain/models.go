package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentSubmission is a customer-reported payment awaiting manual
// verification against an invoice.
type PaymentSubmission struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID    snowflake.ID      `gorm:"not null;index" json:"account_id"`
	InvoiceID    snowflake.ID      `gorm:"not null;index" json:"invoice_id"`
	Amount       decimal.Decimal   `gorm:"type:numeric;not null" json:"amount"`
	Currency     string            `gorm:"type:text;not null" json:"currency"`
	Status       Status            `gorm:"type:text;not null;index" json:"status"`
	Method       string            `gorm:"type:text;not null" json:"method"`
	Reference    string            `gorm:"type:text" json:"reference,omitempty"`
	Notes        string            `gorm:"type:text" json:"notes,omitempty"`
	ReceiptKey   string            `gorm:"type:text" json:"receipt_key,omitempty"`
	RejectReason string            `gorm:"type:text" json:"reject_reason,omitempty"`
	DecidedAt    *time.Time        `json:"decided_at,omitempty"`
	DecidedBy    *string           `gorm:"type:text" json:"decided_by,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (PaymentSubmission) TableName() string { return "payment_submissions" }
