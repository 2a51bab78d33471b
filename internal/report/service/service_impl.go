package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/smallbiznis/faktura/internal/accountcontext"
	"github.com/smallbiznis/faktura/internal/clock"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	expensedomain "github.com/smallbiznis/faktura/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	reportdomain "github.com/smallbiznis/faktura/internal/report/domain"
	"github.com/smallbiznis/faktura/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportURLTTL    = time.Hour
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Storage *storage.Client
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	storage *storage.Client
}

func NewService(p Params) reportdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("report.service"),
		clock:   p.Clock,
		storage: p.Storage,
	}
}

type invoiceColumn struct {
	header string
	value  func(invoicedomain.Invoice, map[int64]string) any
}

var invoiceColumns = []invoiceColumn{
	{"Number", func(inv invoicedomain.Invoice, names map[int64]string) any { return inv.Number }},
	{"Customer", func(inv invoicedomain.Invoice, names map[int64]string) any { return names[int64(inv.CustomerID)] }},
	{"Status", func(inv invoicedomain.Invoice, names map[int64]string) any { return string(inv.Status) }},
	{"Currency", func(inv invoicedomain.Invoice, names map[int64]string) any { return inv.Currency }},
	{"Subtotal", func(inv invoicedomain.Invoice, names map[int64]string) any { return inv.Subtotal.StringFixed(2) }},
	{"Tax", func(inv invoicedomain.Invoice, names map[int64]string) any { return inv.TotalTax.StringFixed(2) }},
	{"Discount", func(inv invoicedomain.Invoice, names map[int64]string) any { return inv.TotalDiscount.StringFixed(2) }},
	{"Grand Total", func(inv invoicedomain.Invoice, names map[int64]string) any { return inv.GrandTotal.StringFixed(2) }},
	{"Issued At", func(inv invoicedomain.Invoice, names map[int64]string) any { return formatDate(inv.IssuedAt) }},
	{"Due At", func(inv invoicedomain.Invoice, names map[int64]string) any { return formatDate(inv.DueAt) }},
	{"Paid At", func(inv invoicedomain.Invoice, names map[int64]string) any { return formatDate(inv.PaidAt) }},
}

func (s *Service) ExportInvoices(ctx context.Context, from, to *time.Time) (*reportdomain.ExportResult, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, reportdomain.ErrInvalidAccount
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("account_id = ?", accountID)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}

	var invoices []invoicedomain.Invoice
	if err := query.Order("id ASC").Find(&invoices).Error; err != nil {
		return nil, err
	}

	names, err := s.customerNames(ctx, accountID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Invoices"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, col := range invoiceColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.header)
	}
	for rowIdx, inv := range invoices {
		for colIdx, col := range invoiceColumns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, col.value(inv, names))
		}
	}

	fileName := fmt.Sprintf("invoices_%s.xlsx", s.clock.Now().Format("20060102_150405"))
	return s.finish(ctx, f, fileName, len(invoices))
}

type expenseColumn struct {
	header string
	value  func(expensedomain.Expense) any
}

var expenseColumns = []expenseColumn{
	{"Category", func(e expensedomain.Expense) any { return e.Category }},
	{"Description", func(e expensedomain.Expense) any { return e.Description }},
	{"Vendor", func(e expensedomain.Expense) any { return e.Vendor }},
	{"Currency", func(e expensedomain.Expense) any { return e.Currency }},
	{"Amount", func(e expensedomain.Expense) any { return e.Amount.StringFixed(2) }},
	{"Incurred At", func(e expensedomain.Expense) any { return e.IncurredAt.UTC().Format("2006-01-02") }},
	{"Notes", func(e expensedomain.Expense) any { return e.Notes }},
}

func (s *Service) ExportExpenses(ctx context.Context, from, to *time.Time) (*reportdomain.ExportResult, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, reportdomain.ErrInvalidAccount
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Model(&expensedomain.Expense{}).
		Where("account_id = ?", accountID)
	if from != nil {
		query = query.Where("incurred_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("incurred_at < ?", *to)
	}

	var expenses []expensedomain.Expense
	if err := query.Order("incurred_at ASC, id ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Expenses"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, col := range expenseColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.header)
	}
	for rowIdx, expense := range expenses {
		for colIdx, col := range expenseColumns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, col.value(expense))
		}
	}

	fileName := fmt.Sprintf("expenses_%s.xlsx", s.clock.Now().Format("20060102_150405"))
	return s.finish(ctx, f, fileName, len(expenses))
}

func (s *Service) finish(ctx context.Context, f *excelize.File, fileName string, rows int) (*reportdomain.ExportResult, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	result := &reportdomain.ExportResult{
		FileName:    fileName,
		ContentType: xlsxContentType,
		RowCount:    rows,
		Data:        buf.Bytes(),
	}

	key, err := s.storage.Upload(ctx, "exports/"+fileName, result.Data, xlsxContentType)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return result, nil
		}
		return nil, err
	}
	result.Key = key

	url, err := s.storage.PresignedURL(ctx, key, exportURLTTL)
	if err != nil {
		s.log.Warn("presign export url failed", zap.Error(err))
		return result, nil
	}
	result.URL = url
	return result, nil
}

func (s *Service) customerNames(ctx context.Context, accountID any) (map[int64]string, error) {
	var rows []struct {
		ID   int64
		Name string
	}
	if err := s.db.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Select("id", "name").
		Where("account_id = ?", accountID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func validateRange(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return reportdomain.ErrInvalidRange
	}
	return nil
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format("2006-01-02")
}
