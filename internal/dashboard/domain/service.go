package domain

import (
	"context"
	"errors"
	"time"
)

// Service exposes read-only aggregates for the account dashboard.
type Service interface {
	Summary(ctx context.Context) (SummaryResponse, error)
	Receivables(ctx context.Context) (ReceivablesResponse, error)
	ExpenseBreakdown(ctx context.Context, from, to *time.Time) (ExpenseBreakdownResponse, error)
	RecentActivity(ctx context.Context, limit int) (ActivityResponse, error)
}

var (
	ErrInvalidAccount = errors.New("invalid_account")
)
