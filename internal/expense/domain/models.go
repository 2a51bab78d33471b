package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Expense records money spent by the business outside of invoicing.
type Expense struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID   snowflake.ID      `gorm:"not null;index" json:"account_id"`
	Category    string            `gorm:"type:text;not null;index" json:"category"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Vendor      string            `gorm:"type:text" json:"vendor,omitempty"`
	Amount      decimal.Decimal   `gorm:"type:numeric;not null" json:"amount"`
	Currency    string            `gorm:"type:text;not null" json:"currency"`
	IncurredAt  time.Time         `gorm:"not null;index" json:"incurred_at"`
	Notes       string            `gorm:"type:text" json:"notes,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Expense) TableName() string { return "expenses" }
