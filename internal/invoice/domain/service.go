package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateInvoiceRequest struct {
	CustomerID string      `json:"customer_id"`
	Number     string      `json:"number"`
	Currency   string      `json:"currency"`
	IssuedAt   *time.Time  `json:"issued_at"`
	DueAt      *time.Time  `json:"due_at"`
	Notes      string      `json:"notes"`
	Items      []DraftItem `json:"items"`
}

// Draft assembles the transient draft carrying the request state, used
// for submit-time validation and totals.
func (r CreateInvoiceRequest) Draft() *Draft {
	return &Draft{
		CustomerID: strings.TrimSpace(r.CustomerID),
		Number:     strings.TrimSpace(r.Number),
		Currency:   strings.ToUpper(strings.TrimSpace(r.Currency)),
		IssuedAt:   r.IssuedAt,
		DueAt:      r.DueAt,
		Notes:      r.Notes,
		Items:      r.Items,
	}
}

type UpdateInvoiceRequest struct {
	ID         string      `json:"id"`
	CustomerID *string     `json:"customer_id"`
	Number     *string     `json:"number"`
	IssuedAt   *time.Time  `json:"issued_at"`
	DueAt      *time.Time  `json:"due_at"`
	Notes      *string     `json:"notes"`
	Items      []DraftItem `json:"items"`
}

type ListInvoiceRequest struct {
	PageToken  string
	PageSize   int32
	Status     Status
	CustomerID string
	Number     string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	Update(ctx context.Context, req UpdateInvoiceRequest) (*Invoice, error)
	AddItem(ctx context.Context, invoiceID string, item DraftItem) (*Invoice, error)
	RemoveItem(ctx context.Context, invoiceID, itemID string) (*Invoice, error)
	Send(ctx context.Context, id string) (*Invoice, error)
	Void(ctx context.Context, id string, reason string) (*Invoice, error)

	// Settle marks an invoice paid inside the caller's transaction. It is
	// invoked by the payment service when a submission is approved.
	Settle(ctx context.Context, tx *gorm.DB, accountID, invoiceID snowflake.ID, amount decimal.Decimal, paidAt time.Time) error
}

// ParseID parses an invoice or line item ID from its string form.
func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

var (
	ErrInvalidAccount    = errors.New("invalid_account")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidNumber     = errors.New("invalid_number")
	ErrInvalidCurrency   = errors.New("invalid_currency")
	ErrInvalidDraft      = errors.New("invalid_draft")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNegativeQuantity  = errors.New("negative_quantity")
	ErrNegativeUnitPrice = errors.New("negative_unit_price")
	ErrPercentOutOfRange = errors.New("percent_out_of_range")
	ErrAmountMismatch    = errors.New("amount_mismatch")
	ErrDuplicateNumber   = errors.New("duplicate_number")
	ErrNotFound          = errors.New("invoice_not_found")
	ErrItemNotFound      = errors.New("line_item_not_found")
	ErrLastItem          = errors.New("last_line_item")
	ErrNotEditable       = errors.New("invoice_not_editable")
)

// ValidationError wraps per-field draft errors so transports can render
// them inline.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string { return "invalid_draft" }

func (e *ValidationError) Unwrap() error { return ErrInvalidDraft }
