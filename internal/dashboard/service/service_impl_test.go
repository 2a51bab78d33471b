package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/accountcontext"
	auditrepository "github.com/smallbiznis/faktura/internal/audit/repository"
	auditservice "github.com/smallbiznis/faktura/internal/audit/service"
	"github.com/smallbiznis/faktura/internal/clock"
	dashboarddomain "github.com/smallbiznis/faktura/internal/dashboard/domain"
	"github.com/smallbiznis/faktura/pkg/cache/redis"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupDashboardTestDB(t *testing.T) *gorm.DB {
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
			due_at DATETIME,
			grand_total NUMERIC NOT NULL
		)`,
		`CREATE TABLE payment_submissions (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			invoice_id BIGINT NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE expenses (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			category TEXT NOT NULL,
			currency TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			incurred_at DATETIME NOT NULL
		)`,
		`CREATE TABLE audit_logs (
			id INTEGER PRIMARY KEY,
			account_id BIGINT,
			actor_type TEXT NOT NULL,
			actor_id TEXT,
			action TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			ip_address TEXT,
			user_agent TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newDashboardTestService(t *testing.T, db *gorm.DB) dashboarddomain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepository.Provide(),
	})
	return NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clock.Fixed(testNow),
		Cache:    &redis.Cache{},
		AuditSvc: auditSvc,
	})
}

func dashboardCtx(accountID snowflake.ID) context.Context {
	return accountcontext.WithAccountID(context.Background(), accountID)
}

func seedInvoice(t *testing.T, db *gorm.DB, id int64, status, currency string, total int64, dueAt *time.Time) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO invoices (id, account_id, customer_id, number, status, currency, due_at, grand_total)
		 VALUES (?, 100, 7, ?, ?, ?, ?, ?)`,
		id,
		"INV-"+status,
		status,
		currency,
		dueAt,
		total,
	).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
}

func TestDashboardSummary(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardTestService(t, db)
	ctx := dashboardCtx(100)

	seedInvoice(t, db, 1, "paid", "USD", 440, nil)
	seedInvoice(t, db, 2, "sent", "USD", 100, nil)
	seedInvoice(t, db, 3, "draft", "USD", 50, nil)
	seedInvoice(t, db, 4, "void", "USD", 999, nil)
	if err := db.Exec(
		`INSERT INTO payment_submissions (id, account_id, invoice_id, status) VALUES (10, 100, 2, 'pending')`,
	).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO customers (id, account_id, name, email) VALUES (7, 100, 'Acme', 'a@b.c'), (8, 100, 'Globex', 'g@x.y')`,
	).Error; err != nil {
		t.Fatalf("seed customers: %v", err)
	}

	resp, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(resp.Revenue) != 1 {
		t.Fatalf("expected one currency bucket, got %d", len(resp.Revenue))
	}
	bucket := resp.Revenue[0]
	if bucket.Currency != "USD" {
		t.Fatalf("unexpected currency %q", bucket.Currency)
	}
	if bucket.TotalInvoiced != "590" {
		t.Fatalf("expected 590 invoiced without voided, got %s", bucket.TotalInvoiced)
	}
	if bucket.TotalPaid != "440" || bucket.TotalOutstanding != "100" {
		t.Fatalf("unexpected totals: paid %s outstanding %s", bucket.TotalPaid, bucket.TotalOutstanding)
	}
	if bucket.InvoiceCount != 3 || bucket.PaidCount != 1 {
		t.Fatalf("unexpected counts: %+v", bucket)
	}
	if resp.DraftInvoices != 1 || resp.PendingPayments != 1 || resp.CustomerCount != 2 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
	if !resp.GeneratedAt.Equal(testNow) {
		t.Fatalf("unexpected generated_at: %v", resp.GeneratedAt)
	}
}

func TestDashboardSummaryRequiresAccount(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardTestService(t, db)

	if _, err := svc.Summary(context.Background()); !errors.Is(err, dashboarddomain.ErrInvalidAccount) {
		t.Fatalf("expected invalid account, got %v", err)
	}
}

func TestDashboardReceivables(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardTestService(t, db)
	ctx := dashboardCtx(100)

	if err := db.Exec(
		`INSERT INTO customers (id, account_id, name, email) VALUES (7, 100, 'Acme', 'a@b.c')`,
	).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	pastDue := testNow.AddDate(0, 0, -10)
	futureDue := testNow.AddDate(0, 0, 5)
	seedInvoice(t, db, 1, "overdue", "USD", 440, &pastDue)
	seedInvoice(t, db, 2, "sent", "USD", 100, &futureDue)
	seedInvoice(t, db, 3, "paid", "USD", 50, nil)

	resp, err := svc.Receivables(ctx)
	if err != nil {
		t.Fatalf("receivables: %v", err)
	}
	if len(resp.Invoices) != 2 {
		t.Fatalf("expected 2 outstanding invoices, got %d", len(resp.Invoices))
	}
	if resp.Invoices[0].DaysOverdue != 10 {
		t.Fatalf("expected 10 days overdue, got %d", resp.Invoices[0].DaysOverdue)
	}
	if resp.Invoices[0].CustomerName != "Acme" {
		t.Fatalf("expected joined customer name, got %q", resp.Invoices[0].CustomerName)
	}
	if resp.Invoices[1].DaysOverdue != 0 {
		t.Fatalf("future invoice should not be overdue, got %d", resp.Invoices[1].DaysOverdue)
	}
}

func TestDashboardExpenseBreakdown(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardTestService(t, db)
	ctx := dashboardCtx(100)

	rows := []struct {
		id       int64
		category string
		amount   int64
		at       time.Time
	}{
		{1, "office", 25, testNow.AddDate(0, 0, -1)},
		{2, "office", 75, testNow.AddDate(0, 0, -2)},
		{3, "travel", 50, testNow.AddDate(0, -3, 0)},
	}
	for _, row := range rows {
		if err := db.Exec(
			`INSERT INTO expenses (id, account_id, category, currency, amount, incurred_at)
			 VALUES (?, 100, ?, 'USD', ?, ?)`,
			row.id, row.category, row.amount, row.at,
		).Error; err != nil {
			t.Fatalf("seed expense: %v", err)
		}
	}

	all, err := svc.ExpenseBreakdown(ctx, nil, nil)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(all.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(all.Categories))
	}
	if all.Categories[0].Category != "office" || all.Categories[0].Total != "100" || all.Categories[0].Count != 2 {
		t.Fatalf("unexpected office bucket: %+v", all.Categories[0])
	}

	from := testNow.AddDate(0, -1, 0)
	recent, err := svc.ExpenseBreakdown(ctx, &from, nil)
	if err != nil {
		t.Fatalf("breakdown with range: %v", err)
	}
	if len(recent.Categories) != 1 || recent.Categories[0].Category != "office" {
		t.Fatalf("expected only recent office expenses, got %+v", recent.Categories)
	}
}

func TestDashboardRecentActivity(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := newDashboardTestService(t, db)
	ctx := dashboardCtx(100)

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepository.Provide(),
	})
	accountID := snowflake.ID(100)
	targetID := "42"
	if err := auditSvc.AuditLog(ctx, &accountID, "user", nil, "invoice.send", "invoice", &targetID, nil); err != nil {
		t.Fatalf("audit log: %v", err)
	}

	resp, err := svc.RecentActivity(ctx, 10)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(resp.Activity) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(resp.Activity))
	}
	entry := resp.Activity[0]
	if entry.Action != "invoice.send" || entry.TargetType != "invoice" || entry.TargetID != "42" {
		t.Fatalf("unexpected activity: %+v", entry)
	}
}
