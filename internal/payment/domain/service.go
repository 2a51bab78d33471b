package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

// Receipt is an uploaded proof-of-payment document.
type Receipt struct {
	FileName    string
	ContentType string
	Data        []byte
}

type SubmitPaymentRequest struct {
	InvoiceID     string
	InvoiceNumber string
	Amount        decimal.Decimal
	Method        string
	Reference     string
	Notes         string
	Receipt       *Receipt
}

type ListPaymentRequest struct {
	PageToken string
	PageSize  int32
	InvoiceID string
	Status    Status
}

type ListPaymentResponse struct {
	Payments []PaymentSubmission `json:"payments"`
	pagination.PageInfo
}

type Service interface {
	Submit(ctx context.Context, req SubmitPaymentRequest) (*PaymentSubmission, error)
	List(ctx context.Context, req ListPaymentRequest) (ListPaymentResponse, error)
	GetByID(ctx context.Context, id string) (*PaymentSubmission, error)
	Approve(ctx context.Context, id string) (*PaymentSubmission, error)
	Reject(ctx context.Context, id string, reason string) (*PaymentSubmission, error)
	ReceiptURL(ctx context.Context, id string) (string, error)
}

var (
	ErrInvalidAccount    = errors.New("invalid_account")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidInvoice    = errors.New("invalid_invoice")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidMethod     = errors.New("invalid_method")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrAlreadyDecided    = errors.New("already_decided")
	ErrInvoiceNotPayable = errors.New("invoice_not_payable")
	ErrNotFound          = errors.New("payment_not_found")
	ErrNoReceipt         = errors.New("no_receipt")
)
