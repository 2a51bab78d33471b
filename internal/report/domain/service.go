package domain

import (
	"context"
	"errors"
	"time"
)

// ExportResult carries a generated workbook. Data is always populated;
// Key and URL are set only when object storage is configured.
type ExportResult struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Key         string `json:"key,omitempty"`
	URL         string `json:"url,omitempty"`
	RowCount    int    `json:"row_count"`
	Data        []byte `json:"-"`
}

// Service produces spreadsheet exports for bookkeeping.
type Service interface {
	ExportInvoices(ctx context.Context, from, to *time.Time) (*ExportResult, error)
	ExportExpenses(ctx context.Context, from, to *time.Time) (*ExportResult, error)
}

var (
	ErrInvalidAccount = errors.New("invalid_account")
	ErrInvalidRange   = errors.New("invalid_range")
)
