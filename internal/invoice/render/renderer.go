package render

import (
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
)

// RenderInput is the deterministic input used for invoice rendering.
type RenderInput struct {
	Brand    BrandView
	Invoice  InvoiceView
	Customer CustomerView
	Items    []LineItemView
}

type BrandView struct {
	CompanyName  string
	LogoURL      string
	FooterNotes  string
	FooterLegal  string
	PrimaryColor string
	FontFamily   string
}

type InvoiceView struct {
	ID            string
	Number        string
	Status        string
	Currency      string
	IssuedAt      *time.Time
	DueAt         *time.Time
	PaidAt        *time.Time
	Notes         string
	Subtotal      decimal.Decimal
	TotalTax      decimal.Decimal
	TotalDiscount decimal.Decimal
	GrandTotal    decimal.Decimal
}

type CustomerView struct {
	Name  string
	Email string
}

type LineItemView struct {
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxPercent      decimal.Decimal
	DiscountPercent decimal.Decimal
	LineTotal       decimal.Decimal
}

// FromInvoice builds the render input from a stored invoice.
func FromInvoice(invoice *invoicedomain.Invoice, customerName, customerEmail string, brand BrandView) RenderInput {
	items := make([]LineItemView, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, LineItemView{
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxPercent:      item.TaxPercent,
			DiscountPercent: item.DiscountPercent,
			LineTotal:       item.LineTotal,
		})
	}
	return RenderInput{
		Brand: brand,
		Invoice: InvoiceView{
			ID:            invoice.ID.String(),
			Number:        invoice.Number,
			Status:        string(invoice.Status),
			Currency:      invoice.Currency,
			IssuedAt:      invoice.IssuedAt,
			DueAt:         invoice.DueAt,
			PaidAt:        invoice.PaidAt,
			Notes:         invoice.Notes,
			Subtotal:      invoice.Subtotal,
			TotalTax:      invoice.TotalTax,
			TotalDiscount: invoice.TotalDiscount,
			GrandTotal:    invoice.GrandTotal,
		},
		Customer: CustomerView{Name: customerName, Email: customerEmail},
		Items:    items,
	}
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}

type PDFRenderer interface {
	RenderPDF(input RenderInput) ([]byte, error)
}
