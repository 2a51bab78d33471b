package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type CreateExpenseRequest struct {
	Category    string
	Description string
	Vendor      string
	Amount      decimal.Decimal
	Currency    string
	IncurredAt  *time.Time
	Notes       string
}

type UpdateExpenseRequest struct {
	ID          string
	Category    *string
	Description *string
	Vendor      *string
	Amount      *decimal.Decimal
	Currency    *string
	IncurredAt  *time.Time
	Notes       *string
}

type ListExpenseRequest struct {
	PageToken    string
	PageSize     int32
	Category     string
	IncurredFrom *time.Time
	IncurredTo   *time.Time
}

type ListExpenseResponse struct {
	Expenses []Expense `json:"expenses"`
	pagination.PageInfo
}

type Service interface {
	Create(ctx context.Context, req CreateExpenseRequest) (*Expense, error)
	List(ctx context.Context, req ListExpenseRequest) (ListExpenseResponse, error)
	GetByID(ctx context.Context, id string) (*Expense, error)
	Update(ctx context.Context, req UpdateExpenseRequest) (*Expense, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidAccount     = errors.New("invalid_account")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidCurrency    = errors.New("invalid_currency")
	ErrNotFound           = errors.New("expense_not_found")
)
