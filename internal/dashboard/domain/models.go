package domain

import "time"

// RevenueSummary aggregates invoicing totals for one currency.
type RevenueSummary struct {
	Currency         string `json:"currency"`
	TotalInvoiced    string `json:"total_invoiced"`
	TotalPaid        string `json:"total_paid"`
	TotalOutstanding string `json:"total_outstanding"`
	InvoiceCount     int64  `json:"invoice_count"`
	PaidCount        int64  `json:"paid_count"`
	OverdueCount     int64  `json:"overdue_count"`
}

// SummaryResponse is the dashboard landing payload.
type SummaryResponse struct {
	Revenue         []RevenueSummary `json:"revenue"`
	DraftInvoices   int64            `json:"draft_invoices"`
	PendingPayments int64            `json:"pending_payments"`
	CustomerCount   int64            `json:"customer_count"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// OutstandingInvoice is a receivable still waiting on payment.
type OutstandingInvoice struct {
	InvoiceID    string     `json:"invoice_id"`
	Number       string     `json:"number"`
	CustomerID   string     `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	Currency     string     `json:"currency"`
	GrandTotal   string     `json:"grand_total"`
	Status       string     `json:"status"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	DaysOverdue  int64      `json:"days_overdue"`
}

// ReceivablesResponse lists open invoices ordered by age.
type ReceivablesResponse struct {
	Invoices []OutstandingInvoice `json:"invoices"`
}

// CategoryTotal is an expense rollup per category.
type CategoryTotal struct {
	Category string `json:"category"`
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Count    int64  `json:"count"`
}

// ExpenseBreakdownResponse groups spending over a period.
type ExpenseBreakdownResponse struct {
	Categories []CategoryTotal `json:"categories"`
}

// Activity is a human-readable audit trail entry.
type Activity struct {
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ActivityResponse lists recent account activity.
type ActivityResponse struct {
	Activity []Activity `json:"activity"`
}
