package domain

import "github.com/shopspring/decimal"

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// LineInput carries the four raw inputs of a single invoice line.
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxPercent      decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Totals are the derived aggregates of an invoice.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

func (in LineInput) validate() error {
	if in.Quantity.IsNegative() {
		return ErrNegativeQuantity
	}
	if in.UnitPrice.IsNegative() {
		return ErrNegativeUnitPrice
	}
	if in.TaxPercent.IsNegative() || in.TaxPercent.GreaterThan(oneHundred) {
		return ErrPercentOutOfRange
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(oneHundred) {
		return ErrPercentOutOfRange
	}
	return nil
}

// LineSubtotal returns quantity * unitPrice before tax and discount.
func LineSubtotal(in LineInput) decimal.Decimal {
	return in.Quantity.Mul(in.UnitPrice)
}

// LineTotal computes quantity * unitPrice * (1 + tax/100) * (1 - discount/100).
// Percentages outside [0,100] and negative quantity or price are rejected
// rather than producing a nonsensical total.
func LineTotal(in LineInput) (decimal.Decimal, error) {
	if err := in.validate(); err != nil {
		return decimal.Zero, err
	}
	taxFactor := one.Add(in.TaxPercent.Div(oneHundred))
	discountFactor := one.Sub(in.DiscountPercent.Div(oneHundred))
	return LineSubtotal(in).Mul(taxFactor).Mul(discountFactor), nil
}

// ComputeTotals aggregates lines into invoice totals. The discount is
// applied before tax, so the grand total equals the exact sum of the
// per-line totals regardless of item ordering.
func ComputeTotals(lines []LineInput) (Totals, error) {
	totals := Totals{
		Subtotal:      decimal.Zero,
		TotalTax:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		GrandTotal:    decimal.Zero,
	}
	for _, line := range lines {
		if err := line.validate(); err != nil {
			return Totals{}, err
		}
		lineSubtotal := LineSubtotal(line)
		discount := lineSubtotal.Mul(line.DiscountPercent).Div(oneHundred)
		tax := lineSubtotal.Sub(discount).Mul(line.TaxPercent).Div(oneHundred)

		totals.Subtotal = totals.Subtotal.Add(lineSubtotal)
		totals.TotalDiscount = totals.TotalDiscount.Add(discount)
		totals.TotalTax = totals.TotalTax.Add(tax)
	}
	totals.GrandTotal = totals.Subtotal.Add(totals.TotalTax).Sub(totals.TotalDiscount)
	return totals, nil
}
