package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type CreateCustomerRequest struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Currency string
}

type UpdateCustomerRequest struct {
	ID       string
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Currency *string
}

type GetCustomerRequest struct {
	ID string
}

type ListCustomerRequest struct {
	PageToken   string
	PageSize    int32
	Name        string
	Email       string
	Currency    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerResponse struct {
	Customers []Customer `json:"customers"`
	pagination.PageInfo
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(ctx context.Context, req GetCustomerRequest) (*Customer, error)
	Update(ctx context.Context, req UpdateCustomerRequest) (*Customer, error)
	Delete(ctx context.Context, req GetCustomerRequest) error
}

var (
	ErrInvalidAccount  = errors.New("invalid_account")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidID       = errors.New("invalid_id")
	ErrDuplicateEmail  = errors.New("duplicate_email")
	ErrNotFound        = errors.New("customer_not_found")
	ErrHasInvoices     = errors.New("customer_has_invoices")
)
