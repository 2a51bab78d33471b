package domain

import (
	"testing"
)

func TestNewDraftStartsWithBlankLine(t *testing.T) {
	d := NewDraft()
	if len(d.Items) != 1 {
		t.Fatalf("expected one blank line, got %d", len(d.Items))
	}
	if d.Items[0].Position != 1 {
		t.Fatalf("expected position 1, got %d", d.Items[0].Position)
	}
}

func TestDraftAddRemoveItems(t *testing.T) {
	d := NewDraft()
	d.Items[0] = DraftItem{
		Position:   1,
		Quantity:   dec("2"),
		UnitPrice:  dec("100"),
		TaxPercent: dec("10"),
	}
	before, err := d.Totals()
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	second := d.AddItem(DraftItem{Description: "widgets", Quantity: dec("1"), UnitPrice: dec("50")})
	third := d.AddItem(DraftItem{Description: "gadgets"})
	if second != 2 || third != 3 {
		t.Fatalf("expected positions 2 and 3, got %d and %d", second, third)
	}

	withItem, err := d.Totals()
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !withItem.GrandTotal.Equal(before.GrandTotal.Add(dec("50"))) {
		t.Fatalf("expected grand total to grow by 50, got %s", withItem.GrandTotal)
	}

	if !d.RemoveItem(second) {
		t.Fatal("expected remove to succeed")
	}
	if d.RemoveItem(second) {
		t.Fatal("expected repeated remove to fail")
	}
	if len(d.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(d.Items))
	}
	if d.Items[0].Position != 1 || d.Items[1].Position != 3 {
		t.Fatalf("expected remaining positions 1 and 3, got %d and %d", d.Items[0].Position, d.Items[1].Position)
	}

	// Adding then removing a line restores the aggregate exactly.
	after, err := d.Totals()
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !after.Subtotal.Equal(before.Subtotal) ||
		!after.TotalTax.Equal(before.TotalTax) ||
		!after.TotalDiscount.Equal(before.TotalDiscount) ||
		!after.GrandTotal.Equal(before.GrandTotal) {
		t.Fatalf("totals not restored after removal: %+v vs %+v", after, before)
	}

	// Positions are never reused after a removal.
	if next := d.AddItem(DraftItem{}); next != 4 {
		t.Fatalf("expected position 4, got %d", next)
	}
}

func TestDraftUpdateItem(t *testing.T) {
	d := NewDraft()
	desc := "consulting"
	qty := dec("2")
	if !d.UpdateItem(1, DraftItemPatch{Description: &desc, Quantity: &qty}) {
		t.Fatal("expected update to succeed")
	}
	if d.Items[0].Description != "consulting" {
		t.Fatalf("expected description updated, got %q", d.Items[0].Description)
	}
	if !d.Items[0].Quantity.Equal(qty) {
		t.Fatalf("expected quantity 2, got %s", d.Items[0].Quantity)
	}

	if d.UpdateItem(99, DraftItemPatch{Description: &desc}) {
		t.Fatal("expected update on missing position to fail")
	}
}

func TestDraftTotals(t *testing.T) {
	d := NewDraft()
	d.Items[0] = DraftItem{
		Position:   1,
		Quantity:   dec("2"),
		UnitPrice:  dec("100"),
		TaxPercent: dec("10"),
	}
	d.AddItem(DraftItem{Quantity: dec("1"), UnitPrice: dec("200"), TaxPercent: dec("10")})

	totals, err := d.Totals()
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.GrandTotal.Equal(dec("440")) {
		t.Fatalf("expected grand total 440, got %s", totals.GrandTotal)
	}
}

func TestDraftValidate(t *testing.T) {
	d := NewDraft()
	errs := d.Validate()

	expectField(t, errs, "customer_id", "required")
	expectField(t, errs, "number", "required")
	expectField(t, errs, "items[1].description", "required")
	expectField(t, errs, "items[1].quantity", "not_positive")
	expectField(t, errs, "items[1].unit_price", "not_positive")
}

func TestDraftValidatePercentBounds(t *testing.T) {
	d := NewDraft()
	d.CustomerID = "1"
	d.Number = "INV-1"
	d.Items[0] = DraftItem{
		Position:        1,
		Description:     "widgets",
		Quantity:        dec("1"),
		UnitPrice:       dec("10"),
		TaxPercent:      dec("101"),
		DiscountPercent: dec("-1"),
	}

	errs := d.Validate()
	expectField(t, errs, "items[1].tax_percent", "out_of_range")
	expectField(t, errs, "items[1].discount_percent", "out_of_range")
	if len(errs) != 2 {
		t.Fatalf("expected exactly two errors, got %v", errs)
	}
}

func TestDraftValidateClean(t *testing.T) {
	d := NewDraft()
	d.CustomerID = "1"
	d.Number = "INV-1"
	d.Items[0] = DraftItem{
		Position:    1,
		Description: "widgets",
		Quantity:    dec("1"),
		UnitPrice:   dec("10"),
	}
	if errs := d.Validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func expectField(t *testing.T, errs []FieldError, field, code string) {
	t.Helper()
	for _, fe := range errs {
		if fe.Field == field && fe.Code == code {
			return
		}
	}
	t.Fatalf("expected error %s/%s in %v", field, code, errs)
}
