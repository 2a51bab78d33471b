package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DraftItem is one editable line of an unsubmitted invoice. Zero-valued
// numeric fields are legal while editing; Validate flags them at submit
// time.
type DraftItem struct {
	Position        int             `json:"position"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// DraftItemPatch updates individual fields of a draft line.
type DraftItemPatch struct {
	Description     *string          `json:"description"`
	Quantity        *decimal.Decimal `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	TaxPercent      *decimal.Decimal `json:"tax_percent"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// Draft holds the transient editable state of one invoice before it is
// submitted. The caller owns it exclusively; submission goes through the
// invoice service, and on failure the draft is left intact for retry.
type Draft struct {
	CustomerID string      `json:"customer_id"`
	Number     string      `json:"number"`
	Currency   string      `json:"currency"`
	IssuedAt   *time.Time  `json:"issued_at"`
	DueAt      *time.Time  `json:"due_at"`
	Notes      string      `json:"notes"`
	Items      []DraftItem `json:"items"`

	nextPosition int
}

// FieldError describes a single invalid draft field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewDraft creates an empty draft holding one blank line item.
func NewDraft() *Draft {
	d := &Draft{}
	d.AddItem(DraftItem{})
	return d
}

// AddItem appends a line and returns its position.
func (d *Draft) AddItem(item DraftItem) int {
	d.nextPosition++
	item.Position = d.nextPosition
	d.Items = append(d.Items, item)
	return item.Position
}

// RemoveItem deletes the line at the given position, preserving the
// order of the remaining lines.
func (d *Draft) RemoveItem(position int) bool {
	for i, item := range d.Items {
		if item.Position == position {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateItem applies a patch to the line at the given position.
func (d *Draft) UpdateItem(position int, patch DraftItemPatch) bool {
	for i := range d.Items {
		if d.Items[i].Position != position {
			continue
		}
		if patch.Description != nil {
			d.Items[i].Description = *patch.Description
		}
		if patch.Quantity != nil {
			d.Items[i].Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			d.Items[i].UnitPrice = *patch.UnitPrice
		}
		if patch.TaxPercent != nil {
			d.Items[i].TaxPercent = *patch.TaxPercent
		}
		if patch.DiscountPercent != nil {
			d.Items[i].DiscountPercent = *patch.DiscountPercent
		}
		return true
	}
	return false
}

// Totals recomputes the aggregate totals from the current lines.
func (d *Draft) Totals() (Totals, error) {
	lines := make([]LineInput, 0, len(d.Items))
	for _, item := range d.Items {
		lines = append(lines, LineInput{
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxPercent:      item.TaxPercent,
			DiscountPercent: item.DiscountPercent,
		})
	}
	return ComputeTotals(lines)
}

// Validate inspects the draft state without touching the network or
// database. It returns one error per invalid field and nothing else.
func (d *Draft) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(d.CustomerID) == "" {
		errs = append(errs, FieldError{Field: "customer_id", Code: "required", Message: "customer is required"})
	}
	if strings.TrimSpace(d.Number) == "" {
		errs = append(errs, FieldError{Field: "number", Code: "required", Message: "invoice number is required"})
	}
	if len(d.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Code: "required", Message: "at least one line item is required"})
	}

	for _, item := range d.Items {
		prefix := itemField(item.Position)
		if strings.TrimSpace(item.Description) == "" {
			errs = append(errs, FieldError{Field: prefix + ".description", Code: "required", Message: "description is required"})
		}
		if !item.Quantity.IsPositive() {
			errs = append(errs, FieldError{Field: prefix + ".quantity", Code: "not_positive", Message: "quantity must be greater than zero"})
		}
		if !item.UnitPrice.IsPositive() {
			errs = append(errs, FieldError{Field: prefix + ".unit_price", Code: "not_positive", Message: "unit price must be greater than zero"})
		}
		if item.TaxPercent.IsNegative() || item.TaxPercent.GreaterThan(oneHundred) {
			errs = append(errs, FieldError{Field: prefix + ".tax_percent", Code: "out_of_range", Message: "tax percent must be between 0 and 100"})
		}
		if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(oneHundred) {
			errs = append(errs, FieldError{Field: prefix + ".discount_percent", Code: "out_of_range", Message: "discount percent must be between 0 and 100"})
		}
	}
	return errs
}

func itemField(position int) string {
	return "items[" + strconv.Itoa(position) + "]"
}
