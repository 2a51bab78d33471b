package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/faktura/internal/audit/domain"
	"github.com/smallbiznis/faktura/internal/accountcontext"
	"github.com/smallbiznis/faktura/internal/clock"
	dashboarddomain "github.com/smallbiznis/faktura/internal/dashboard/domain"
	"github.com/smallbiznis/faktura/pkg/cache/redis"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const summaryCacheTTL = time.Minute

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Cache    *redis.Cache
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	cache    *redis.Cache
	auditSvc auditdomain.Service
}

func NewService(p Params) dashboarddomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("dashboard.service"),
		clock:    p.Clock,
		cache:    p.Cache,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Summary(ctx context.Context) (dashboarddomain.SummaryResponse, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return dashboarddomain.SummaryResponse{}, dashboarddomain.ErrInvalidAccount
	}

	cacheKey := "dashboard:summary:" + accountID.String()
	var cached dashboarddomain.SummaryResponse
	if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	var revenueRows []struct {
		Currency         string
		TotalInvoiced    string
		TotalPaid        string
		TotalOutstanding string
		InvoiceCount     int64
		PaidCount        int64
		OverdueCount     int64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT currency,
		        COALESCE(SUM(grand_total), 0) AS total_invoiced,
		        COALESCE(SUM(CASE WHEN status = 'paid' THEN grand_total ELSE 0 END), 0) AS total_paid,
		        COALESCE(SUM(CASE WHEN status IN ('sent', 'overdue') THEN grand_total ELSE 0 END), 0) AS total_outstanding,
		        COUNT(1) AS invoice_count,
		        COUNT(CASE WHEN status = 'paid' THEN 1 END) AS paid_count,
		        COUNT(CASE WHEN status = 'overdue' THEN 1 END) AS overdue_count
		 FROM invoices
		 WHERE account_id = ? AND status <> 'void'
		 GROUP BY currency
		 ORDER BY currency`,
		accountID,
	).Scan(&revenueRows).Error
	if err != nil {
		return dashboarddomain.SummaryResponse{}, err
	}

	resp := dashboarddomain.SummaryResponse{GeneratedAt: s.clock.Now()}
	for _, row := range revenueRows {
		resp.Revenue = append(resp.Revenue, dashboarddomain.RevenueSummary{
			Currency:         row.Currency,
			TotalInvoiced:    row.TotalInvoiced,
			TotalPaid:        row.TotalPaid,
			TotalOutstanding: row.TotalOutstanding,
			InvoiceCount:     row.InvoiceCount,
			PaidCount:        row.PaidCount,
			OverdueCount:     row.OverdueCount,
		})
	}

	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM invoices WHERE account_id = ? AND status = 'draft'`,
		accountID,
	).Scan(&resp.DraftInvoices).Error; err != nil {
		return dashboarddomain.SummaryResponse{}, err
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM payment_submissions WHERE account_id = ? AND status = 'pending'`,
		accountID,
	).Scan(&resp.PendingPayments).Error; err != nil {
		return dashboarddomain.SummaryResponse{}, err
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM customers WHERE account_id = ?`,
		accountID,
	).Scan(&resp.CustomerCount).Error; err != nil {
		return dashboarddomain.SummaryResponse{}, err
	}

	s.cache.SetJSON(ctx, cacheKey, resp, summaryCacheTTL)
	return resp, nil
}

func (s *Service) Receivables(ctx context.Context) (dashboarddomain.ReceivablesResponse, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return dashboarddomain.ReceivablesResponse{}, dashboarddomain.ErrInvalidAccount
	}

	var rows []struct {
		InvoiceID    snowflake.ID
		Number       string
		CustomerID   snowflake.ID
		CustomerName string
		Currency     string
		GrandTotal   string
		Status       string
		DueAt        *time.Time
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT i.id AS invoice_id,
		        i.number,
		        i.customer_id,
		        COALESCE(c.name, '') AS customer_name,
		        i.currency,
		        i.grand_total,
		        i.status,
		        i.due_at
		 FROM invoices i
		 LEFT JOIN customers c ON c.id = i.customer_id AND c.account_id = i.account_id
		 WHERE i.account_id = ? AND i.status IN ('sent', 'overdue')
		 ORDER BY i.due_at ASC NULLS LAST, i.id ASC`,
		accountID,
	).Scan(&rows).Error
	if err != nil {
		return dashboarddomain.ReceivablesResponse{}, err
	}

	now := s.clock.Now()
	resp := dashboarddomain.ReceivablesResponse{}
	for _, row := range rows {
		var daysOverdue int64
		if row.DueAt != nil && now.After(*row.DueAt) {
			daysOverdue = int64(now.Sub(*row.DueAt).Hours() / 24)
		}
		resp.Invoices = append(resp.Invoices, dashboarddomain.OutstandingInvoice{
			InvoiceID:    row.InvoiceID.String(),
			Number:       row.Number,
			CustomerID:   row.CustomerID.String(),
			CustomerName: row.CustomerName,
			Currency:     row.Currency,
			GrandTotal:   row.GrandTotal,
			Status:       row.Status,
			DueAt:        row.DueAt,
			DaysOverdue:  daysOverdue,
		})
	}
	return resp, nil
}

func (s *Service) ExpenseBreakdown(ctx context.Context, from, to *time.Time) (dashboarddomain.ExpenseBreakdownResponse, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return dashboarddomain.ExpenseBreakdownResponse{}, dashboarddomain.ErrInvalidAccount
	}

	query := `SELECT category, currency, COALESCE(SUM(amount), 0) AS total, COUNT(1) AS count
	 FROM expenses
	 WHERE account_id = ?`
	args := []any{accountID}
	if from != nil {
		query += ` AND incurred_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND incurred_at < ?`
		args = append(args, *to)
	}
	query += ` GROUP BY category, currency ORDER BY category, currency`

	var rows []struct {
		Category string
		Currency string
		Total    string
		Count    int64
	}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return dashboarddomain.ExpenseBreakdownResponse{}, err
	}

	resp := dashboarddomain.ExpenseBreakdownResponse{}
	for _, row := range rows {
		resp.Categories = append(resp.Categories, dashboarddomain.CategoryTotal{
			Category: row.Category,
			Currency: row.Currency,
			Total:    row.Total,
			Count:    row.Count,
		})
	}
	return resp, nil
}

func (s *Service) RecentActivity(ctx context.Context, limit int) (dashboarddomain.ActivityResponse, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return dashboarddomain.ActivityResponse{}, dashboarddomain.ErrInvalidAccount
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	entries, err := s.auditSvc.List(ctx, auditdomain.ListFilter{
		AccountID: accountID,
		Limit:     limit,
	})
	if err != nil {
		return dashboarddomain.ActivityResponse{}, err
	}

	resp := dashboarddomain.ActivityResponse{}
	for _, entry := range entries {
		activity := dashboarddomain.Activity{
			Action:     entry.Action,
			TargetType: entry.TargetType,
			OccurredAt: entry.CreatedAt,
		}
		if entry.TargetID != nil {
			activity.TargetID = *entry.TargetID
		}
		resp.Activity = append(resp.Activity, activity)
	}
	return resp, nil
}
