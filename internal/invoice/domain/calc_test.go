package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLineTotal(t *testing.T) {
	cases := []struct {
		name string
		in   LineInput
		want string
	}{
		{
			name: "tax only",
			in:   LineInput{Quantity: dec("2"), UnitPrice: dec("100"), TaxPercent: dec("10")},
			want: "220",
		},
		{
			name: "discount only",
			in:   LineInput{Quantity: dec("1"), UnitPrice: dec("200"), DiscountPercent: dec("25")},
			want: "150",
		},
		{
			name: "tax and discount",
			in:   LineInput{Quantity: dec("3"), UnitPrice: dec("50"), TaxPercent: dec("10"), DiscountPercent: dec("20")},
			want: "132",
		},
		{
			name: "fractional quantity",
			in:   LineInput{Quantity: dec("1.5"), UnitPrice: dec("99.99")},
			want: "149.985",
		},
		{
			name: "zero quantity",
			in:   LineInput{Quantity: dec("0"), UnitPrice: dec("100"), TaxPercent: dec("10")},
			want: "0",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LineTotal(tc.in)
			if err != nil {
				t.Fatalf("line total: %v", err)
			}
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestLineTotalRejectsBadInputs(t *testing.T) {
	cases := []struct {
		name string
		in   LineInput
		want error
	}{
		{"negative quantity", LineInput{Quantity: dec("-1"), UnitPrice: dec("10")}, ErrNegativeQuantity},
		{"negative unit price", LineInput{Quantity: dec("1"), UnitPrice: dec("-10")}, ErrNegativeUnitPrice},
		{"tax over 100", LineInput{Quantity: dec("1"), UnitPrice: dec("10"), TaxPercent: dec("101")}, ErrPercentOutOfRange},
		{"negative tax", LineInput{Quantity: dec("1"), UnitPrice: dec("10"), TaxPercent: dec("-1")}, ErrPercentOutOfRange},
		{"discount over 100", LineInput{Quantity: dec("1"), UnitPrice: dec("10"), DiscountPercent: dec("100.01")}, ErrPercentOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LineTotal(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestComputeTotals(t *testing.T) {
	lines := []LineInput{
		{Quantity: dec("2"), UnitPrice: dec("100"), TaxPercent: dec("10")},
		{Quantity: dec("1"), UnitPrice: dec("200"), TaxPercent: dec("10")},
	}

	totals, err := ComputeTotals(lines)
	if err != nil {
		t.Fatalf("compute totals: %v", err)
	}
	if !totals.Subtotal.Equal(dec("400")) {
		t.Fatalf("expected subtotal 400, got %s", totals.Subtotal)
	}
	if !totals.TotalTax.Equal(dec("40")) {
		t.Fatalf("expected tax 40, got %s", totals.TotalTax)
	}
	if !totals.TotalDiscount.Equal(dec("0")) {
		t.Fatalf("expected discount 0, got %s", totals.TotalDiscount)
	}
	if !totals.GrandTotal.Equal(dec("440")) {
		t.Fatalf("expected grand total 440, got %s", totals.GrandTotal)
	}
}

func TestComputeTotalsMatchesLineSum(t *testing.T) {
	lines := []LineInput{
		{Quantity: dec("2"), UnitPrice: dec("100"), TaxPercent: dec("10"), DiscountPercent: dec("5")},
		{Quantity: dec("0.5"), UnitPrice: dec("19.99"), TaxPercent: dec("21")},
		{Quantity: dec("7"), UnitPrice: dec("3.33"), DiscountPercent: dec("50")},
	}

	totals, err := ComputeTotals(lines)
	if err != nil {
		t.Fatalf("compute totals: %v", err)
	}

	sum := decimal.Zero
	for _, line := range lines {
		lineTotal, err := LineTotal(line)
		if err != nil {
			t.Fatalf("line total: %v", err)
		}
		sum = sum.Add(lineTotal)
	}

	if !totals.GrandTotal.Equal(sum) {
		t.Fatalf("grand total %s does not match line sum %s", totals.GrandTotal, sum)
	}
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	lines := []LineInput{
		{Quantity: dec("2"), UnitPrice: dec("100"), TaxPercent: dec("10"), DiscountPercent: dec("5")},
		{Quantity: dec("0.5"), UnitPrice: dec("19.99"), TaxPercent: dec("21")},
		{Quantity: dec("7"), UnitPrice: dec("3.33"), DiscountPercent: dec("50")},
	}
	permutations := [][]LineInput{
		{lines[0], lines[1], lines[2]},
		{lines[2], lines[0], lines[1]},
		{lines[1], lines[2], lines[0]},
		{lines[2], lines[1], lines[0]},
	}

	first, err := ComputeTotals(permutations[0])
	if err != nil {
		t.Fatalf("compute totals: %v", err)
	}
	for i, perm := range permutations[1:] {
		got, err := ComputeTotals(perm)
		if err != nil {
			t.Fatalf("compute totals for permutation %d: %v", i+1, err)
		}
		if !got.Subtotal.Equal(first.Subtotal) ||
			!got.TotalTax.Equal(first.TotalTax) ||
			!got.TotalDiscount.Equal(first.TotalDiscount) ||
			!got.GrandTotal.Equal(first.GrandTotal) {
			t.Fatalf("permutation %d changed totals: %+v vs %+v", i+1, got, first)
		}
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals, err := ComputeTotals(nil)
	if err != nil {
		t.Fatalf("compute totals: %v", err)
	}
	if !totals.GrandTotal.IsZero() {
		t.Fatalf("expected zero grand total, got %s", totals.GrandTotal)
	}
}

func TestComputeTotalsRejectsBadLine(t *testing.T) {
	lines := []LineInput{
		{Quantity: dec("1"), UnitPrice: dec("10")},
		{Quantity: dec("-1"), UnitPrice: dec("10")},
	}
	if _, err := ComputeTotals(lines); !errors.Is(err, ErrNegativeQuantity) {
		t.Fatalf("expected negative quantity error, got %v", err)
	}
}
