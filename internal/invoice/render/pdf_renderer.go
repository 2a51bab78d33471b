package render

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
)

type GofpdfRenderer struct{}

func NewPDFRenderer() PDFRenderer {
	return &GofpdfRenderer{}
}

// RenderPDF produces a single-page A4 invoice document.
func (r *GofpdfRenderer) RenderPDF(input RenderInput) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	company := input.Brand.CompanyName
	if company == "" {
		company = "Invoice"
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(120, 10, company, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(70, 10, "Invoice "+input.Invoice.Number, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(120, 6, input.Customer.Name, "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 6, "Status: "+input.Invoice.Status, "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 6, input.Customer.Email, "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 6, "Issued: "+formatDate(input.Invoice.IssuedAt), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 6, "Due: "+formatDate(input.Invoice.DueAt), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	widths := []float64{70, 18, 30, 18, 22, 32}
	headers := []string{"Description", "Qty", "Unit Price", "Tax %", "Disc %", "Line Total"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(229, 231, 235)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range input.Items {
		pdf.CellFormat(widths[0], 7, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, formatQuantity(item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, formatMoney(item.UnitPrice, input.Invoice.Currency), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, formatPercent(item.TaxPercent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, formatPercent(item.DiscountPercent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, formatMoney(item.LineTotal, input.Invoice.Currency), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	totals := []struct {
		label string
		value string
	}{
		{"Subtotal", formatMoney(input.Invoice.Subtotal, input.Invoice.Currency)},
		{"Tax", formatMoney(input.Invoice.TotalTax, input.Invoice.Currency)},
		{"Discount", "-" + formatMoney(input.Invoice.TotalDiscount, input.Invoice.Currency)},
		{"Total Due", formatMoney(input.Invoice.GrandTotal, input.Invoice.Currency)},
	}
	for i, row := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(138, 7, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(32, 7, row.value, "", 1, "R", false, 0, "")
	}

	if input.Invoice.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, input.Invoice.Notes, "", "L", false)
	}
	if input.Brand.FooterNotes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(0, 4, input.Brand.FooterNotes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
