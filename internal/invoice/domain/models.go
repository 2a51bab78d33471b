package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Invoice is a persisted invoice with its derived totals. Totals are
// always recomputed from the line items before writing, never mutated
// independently.
type Invoice struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID     snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_invoices_account_number,priority:1" json:"account_id"`
	CustomerID    snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	Number        string            `gorm:"type:text;not null;uniqueIndex:ux_invoices_account_number,priority:2" json:"number"`
	Status        Status            `gorm:"type:text;not null;index" json:"status"`
	Currency      string            `gorm:"type:text;not null" json:"currency"`
	IssuedAt      *time.Time        `json:"issued_at,omitempty"`
	DueAt         *time.Time        `json:"due_at,omitempty"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	Notes         string            `gorm:"type:text" json:"notes,omitempty"`
	Subtotal      decimal.Decimal   `gorm:"type:numeric;not null" json:"subtotal"`
	TotalTax      decimal.Decimal   `gorm:"type:numeric;not null" json:"total_tax"`
	TotalDiscount decimal.Decimal   `gorm:"type:numeric;not null" json:"total_discount"`
	GrandTotal    decimal.Decimal   `gorm:"type:numeric;not null" json:"grand_total"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []LineItem `gorm:"foreignKey:InvoiceID" json:"items"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// LineItem is one row of an invoice. LineTotal is derived from the four
// inputs on every write.
type LineItem struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID       snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Position        int             `gorm:"not null" json:"position"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Quantity        decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	TaxPercent      decimal.Decimal `gorm:"type:numeric;not null" json:"tax_percent"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric;not null" json:"discount_percent"`
	LineTotal       decimal.Decimal `gorm:"type:numeric;not null" json:"line_total"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (LineItem) TableName() string { return "invoice_line_items" }
