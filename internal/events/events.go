package events

// Event types stored in the outbox for downstream consumers.
const (
	EventInvoiceSent     = "invoice.sent"
	EventInvoicePaid     = "invoice.paid"
	EventInvoiceVoided   = "invoice.voided"
	EventInvoiceOverdue  = "invoice.overdue"
	EventPaymentApproved = "payment.approved"
	EventPaymentRejected = "payment.rejected"
)

// InvoicePayload captures the minimal data needed to process invoice events.
type InvoicePayload struct {
	InvoiceID string `json:"invoice_id"`
	Number    string `json:"number"`
	Status    string `json:"status"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p InvoicePayload) ToMap() map[string]any {
	payload := map[string]any{
		"invoice_id": p.InvoiceID,
	}
	if p.Number != "" {
		payload["number"] = p.Number
	}
	if p.Status != "" {
		payload["status"] = p.Status
	}
	return payload
}

// PaymentPayload captures the minimal data needed to process payment events.
type PaymentPayload struct {
	PaymentID string `json:"payment_id"`
	InvoiceID string `json:"invoice_id,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p PaymentPayload) ToMap() map[string]any {
	payload := map[string]any{
		"payment_id": p.PaymentID,
	}
	if p.InvoiceID != "" {
		payload["invoice_id"] = p.InvoiceID
	}
	if p.Amount != "" {
		payload["amount"] = p.Amount
	}
	return payload
}
