package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/accountcontext"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/events"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/faktura/internal/invoice/service"
	ledgerservice "github.com/smallbiznis/faktura/internal/ledger/service"
	paymentdomain "github.com/smallbiznis/faktura/internal/payment/domain"
	"github.com/smallbiznis/faktura/internal/storage"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupPaymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	schema := []string{
		`CREATE TABLE customers (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			email TEXT NOT NULL
		)`,
		`CREATE TABLE invoices (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			number TEXT NOT NULL,
			status TEXT NOT NULL,
			currency TEXT NOT NULL,
			issued_at DATETIME,
			due_at DATETIME,
			paid_at DATETIME,
			notes TEXT,
			subtotal NUMERIC NOT NULL,
			total_tax NUMERIC NOT NULL,
			total_discount NUMERIC NOT NULL,
			grand_total NUMERIC NOT NULL,
			metadata TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE invoice_line_items (
			id INTEGER PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			position INTEGER NOT NULL,
			description TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			unit_price NUMERIC NOT NULL,
			tax_percent NUMERIC NOT NULL,
			discount_percent NUMERIC NOT NULL,
			line_total NUMERIC NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE payment_submissions (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			invoice_id BIGINT NOT NULL,
			amount NUMERIC NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			method TEXT NOT NULL,
			reference TEXT,
			notes TEXT,
			receipt_key TEXT,
			reject_reason TEXT,
			decided_at DATETIME,
			decided_by TEXT,
			metadata TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE ledger_accounts (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE ledger_entries (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			source_type TEXT NOT NULL,
			source_id BIGINT NOT NULL,
			currency TEXT NOT NULL,
			occurred_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE ledger_entry_lines (
			id INTEGER PRIMARY KEY,
			ledger_entry_id BIGINT NOT NULL,
			account_id BIGINT NOT NULL,
			direction TEXT NOT NULL,
			amount BIGINT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE outbox_events (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			dedupe_key TEXT,
			published BOOLEAN NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_outbox_events_account_dedupe ON outbox_events (account_id, dedupe_key)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newPaymentTestService(t *testing.T, db *gorm.DB) (paymentdomain.Service, invoicedomain.Service) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	outbox := events.NewOutbox(db, node, clock.Fixed(testNow))
	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.Fixed(testNow),
		LedgerSvc: ledgerSvc,
		Outbox:    outbox,
	})
	paymentSvc := NewService(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clock.Fixed(testNow),
		InvoiceSvc: invoiceSvc,
		Outbox:     outbox,
		Storage:    &storage.Client{},
	})
	return paymentSvc, invoiceSvc
}

func paymentCtx(accountID snowflake.ID) context.Context {
	return accountcontext.WithAccountID(context.Background(), accountID)
}

// sentInvoice seeds a customer and a sent invoice worth 440.
func sentInvoice(t *testing.T, db *gorm.DB, invoiceSvc invoicedomain.Service, ctx context.Context, number string) *invoicedomain.Invoice {
	t.Helper()
	if err := db.Exec(
		`INSERT OR IGNORE INTO customers (id, account_id, name, email) VALUES (7, 100, 'Acme', 'a@b.c')`,
	).Error; err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	qty, _ := decimal.NewFromString("2")
	price, _ := decimal.NewFromString("100")
	tax, _ := decimal.NewFromString("10")
	created, err := invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: "7",
		Number:     number,
		Currency:   "USD",
		Items: []invoicedomain.DraftItem{
			{Description: "Consulting", Quantity: qty, UnitPrice: price, TaxPercent: tax},
			{Description: "Hosting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(200), TaxPercent: tax},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	sent, err := invoiceSvc.Send(ctx, created.ID.String())
	if err != nil {
		t.Fatalf("send invoice: %v", err)
	}
	return sent
}

func TestSubmitPayment(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc, invoiceSvc := newPaymentTestService(t, db)
	ctx := paymentCtx(100)
	invoice := sentInvoice(t, db, invoiceSvc, ctx, "INV-0001")

	submission, err := svc.Submit(ctx, paymentdomain.SubmitPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(440),
		Method:    "Bank_Transfer",
		Reference: " TRX-123 ",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submission.Status != paymentdomain.StatusPending {
		t.Fatalf("expected pending, got %s", submission.Status)
	}
	if submission.Method != "bank_transfer" {
		t.Fatalf("expected normalized method, got %q", submission.Method)
	}
	if submission.Reference != "TRX-123" {
		t.Fatalf("expected trimmed reference, got %q", submission.Reference)
	}
	if submission.Currency != "USD" {
		t.Fatalf("expected invoice currency, got %q", submission.Currency)
	}
}

func TestSubmitPaymentByInvoiceNumber(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc, invoiceSvc := newPaymentTestService(t, db)
	ctx := paymentCtx(100)
	invoice := sentInvoice(t, db, invoiceSvc, ctx, "INV-0001")

	submission, err := svc.Submit(ctx, paymentdomain.SubmitPaymentRequest{
		InvoiceNumber: "INV-0001",
		Amount:        decimal.NewFromInt(440),
		Method:        "cash",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submission.InvoiceID != invoice.ID {
		t.Fatalf("expected submission bound to invoice, got %s", submission.InvoiceID)
	}
}

func TestSubmitPaymentValidation(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc, invoiceSvc := newPaymentTestService(t, db)
	ctx := paymentCtx(100)
	invoice := sentInvoice(t, db, invoiceSvc, ctx, "INV-0001")

	cases := []struct {
		name string
		req  paymentdomain.SubmitPaymentRequest
		want error
	}{
		{
			"zero amount",
			paymentdomain.SubmitPaymentRequest{InvoiceID: invoice.ID.String(), Method: "cash"},
			paymentdomain.ErrInvalidAmount,
		},
		{
			"negative amount",
			paymentdomain.SubmitPaymentRequest{InvoiceID: invoice.ID.String(), Amount: decimal.NewFromInt(-5), Method: "cash"},
			paymentdomain.ErrInvalidAmount,
		},
		{
			"unknown method",
			paymentdomain.SubmitPaymentRequest{InvoiceID: invoice.ID.String(), Amount: decimal.NewFromInt(10), Method: "barter"},
			paymentdomain.ErrInvalidMethod,
		},
		{
			"no invoice reference",
			paymentdomain.SubmitPaymentRequest{Amount: decimal.NewFromInt(10), Method: "cash"},
			paymentdomain.ErrInvalidInvoice,
		},
		{
			"unknown invoice",
			paymentdomain.SubmitPaymentRequest{InvoiceID: "12345", Amount: decimal.NewFromInt(10), Method: "cash"},
			paymentdomain.ErrInvalidInvoice,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSubmitPaymentRejectsDraftInvoice(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc, invoiceSvc := newPaymentTestService(t, db)
	ctx := paymentCtx(100)

	if err := db.Exec(
		`INSERT INTO customers (id, account_id, name, email) VALUES (7, 100, 'Acme', 'a@b.c')`,
	).Error; err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	draft, err := invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: "7",
		Number:     "INV-0001",
		Currency:   "USD",
		Items: []invoicedomain.DraftItem{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if _, err := svc.Submit(ctx, paymentdomain.SubmitPaymentRequest{
		InvoiceID: draft.ID.String(),
		Amount:    decimal.NewFromInt(10),
		Method:    "cash",
	}); !errors.Is(err, paymentdomain.ErrInvoiceNotPayable) {
		t.Fatalf("expected not payable, got %v", err)
	}
}

func TestPaymentScopedToAccount(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc, invoiceSvc := newPaymentTestService(t, db)
	ctx := paymentCtx(100)
	invoice := sentInvoice(t, db, invoiceSvc, ctx, "INV-0001")

	submission, err := svc.Submit(ctx, paymentdomain.SubmitPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(440),
		Method:    "cash",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.GetByID(paymentCtx(200), submission.ID.String()); !errors.Is(err, paymentdomain.ErrNotFound) {
		t.Fatalf("expected not found across accounts, got %v", err)
	}
	loaded, err := svc.GetByID(ctx, submission.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.ID != submission.ID {
		t.Fatal("loaded a different submission")
	}
}

func TestListPaymentsFilters(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc, invoiceSvc := newPaymentTestService(t, db)
	ctx := paymentCtx(100)
	first := sentInvoice(t, db, invoiceSvc, ctx, "INV-0001")
	second := sentInvoice(t, db, invoiceSvc, ctx, "INV-0002")

	for _, invoiceID := range []string{first.ID.String(), second.ID.String()} {
		if _, err := svc.Submit(ctx, paymentdomain.SubmitPaymentRequest{
			InvoiceID: invoiceID,
			Amount:    decimal.NewFromInt(440),
			Method:    "cash",
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	all, err := svc.List(ctx, paymentdomain.ListPaymentRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all.TotalSize != 2 || len(all.Payments) != 2 {
		t.Fatalf("expected 2 payments, got total %d len %d", all.TotalSize, len(all.Payments))
	}

	byInvoice, err := svc.List(ctx, paymentdomain.ListPaymentRequest{InvoiceID: first.ID.String()})
	if err != nil {
		t.Fatalf("list by invoice: %v", err)
	}
	if len(byInvoice.Payments) != 1 || byInvoice.Payments[0].InvoiceID != first.ID {
		t.Fatalf("unexpected filter result: %+v", byInvoice.Payments)
	}

	pending, err := svc.List(ctx, paymentdomain.ListPaymentRequest{Status: paymentdomain.StatusPending})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending.Payments) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending.Payments))
	}

	if _, err := svc.List(ctx, paymentdomain.ListPaymentRequest{Status: "bogus"}); !errors.Is(err, paymentdomain.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestReceiptURLWithoutReceipt(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc, invoiceSvc := newPaymentTestService(t, db)
	ctx := paymentCtx(100)
	invoice := sentInvoice(t, db, invoiceSvc, ctx, "INV-0001")

	submission, err := svc.Submit(ctx, paymentdomain.SubmitPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(440),
		Method:    "cash",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.ReceiptURL(ctx, submission.ID.String()); !errors.Is(err, paymentdomain.ErrNoReceipt) {
		t.Fatalf("expected no receipt, got %v", err)
	}
}
