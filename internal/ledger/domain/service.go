package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// LedgerService writes balanced double-entry postings.
type LedgerService interface {
	CreateEntry(
		ctx context.Context,
		accountID snowflake.ID,
		sourceType string,
		sourceID snowflake.ID,
		currency string,
		occurredAt time.Time,
		lines []LedgerEntryLine,
	) error

	// CreateEntryTx writes the posting inside an existing transaction.
	CreateEntryTx(
		ctx context.Context,
		tx *gorm.DB,
		accountID snowflake.ID,
		sourceType string,
		sourceID snowflake.ID,
		currency string,
		occurredAt time.Time,
		lines []LedgerEntryLine,
	) error

	// EnsureAccount resolves a chart-of-accounts entry, creating it on
	// first use.
	EnsureAccount(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, code, name string) (snowflake.ID, error)
}

// Service is the package alias for LedgerService.
type Service = LedgerService

var (
	ErrInvalidOwner         = errors.New("invalid_account")
	ErrInvalidSourceType    = errors.New("invalid_source_type")
	ErrInvalidSourceID      = errors.New("invalid_source_id")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrInvalidOccurredAt    = errors.New("invalid_occurred_at")
	ErrInvalidEntryLines    = errors.New("invalid_entry_lines")
	ErrInvalidLineAmount    = errors.New("invalid_line_amount")
	ErrInvalidLineDirection = errors.New("invalid_line_direction")
	ErrInvalidAccount       = errors.New("invalid_ledger_account")
	ErrUnbalancedEntry      = errors.New("unbalanced_entry")
)
