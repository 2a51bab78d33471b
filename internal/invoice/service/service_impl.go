package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/accountcontext"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/events"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/faktura/internal/ledger/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	LedgerSvc ledgerdomain.Service
	Outbox    *events.Outbox
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	ledgerSvc ledgerdomain.Service
	outbox    *events.Outbox
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		ledgerSvc: p.LedgerSvc,
		outbox:    p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidAccount
	}

	draft := req.Draft()
	if fieldErrs := draft.Validate(); len(fieldErrs) > 0 {
		return nil, &invoicedomain.ValidationError{Fields: fieldErrs}
	}
	if draft.Currency == "" {
		return nil, invoicedomain.ErrInvalidCurrency
	}

	customerID, err := snowflake.ParseString(draft.CustomerID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidCustomer
	}
	if err := s.customerExists(ctx, accountID, customerID); err != nil {
		return nil, err
	}

	totals, err := draft.Totals()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	invoice := &invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		AccountID:     accountID,
		CustomerID:    customerID,
		Number:        draft.Number,
		Status:        invoicedomain.StatusDraft,
		Currency:      draft.Currency,
		IssuedAt:      draft.IssuedAt,
		DueAt:         draft.DueAt,
		Notes:         draft.Notes,
		Subtotal:      totals.Subtotal,
		TotalTax:      totals.TotalTax,
		TotalDiscount: totals.TotalDiscount,
		GrandTotal:    totals.GrandTotal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	invoice.Items = buildItems(s.genID, invoice.ID, draft.Items, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT COUNT(1) FROM invoices WHERE account_id = ? AND number = ?`,
			accountID,
			draft.Number,
		).Scan(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return invoicedomain.ErrDuplicateNumber
		}
		return tx.WithContext(ctx).Create(invoice).Error
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidAccount
	}

	lastID, err := pagination.DecodeToken(req.PageToken)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}
	limit := pagination.Limit(req.PageSize)

	query := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("account_id = ?", accountID)
	if req.Status != "" {
		if !req.Status.Valid() {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidStatus
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.CustomerID != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidCustomer
		}
		query = query.Where("customer_id = ?", customerID)
	}
	if req.Number != "" {
		query = query.Where("number LIKE ?", "%"+strings.TrimSpace(req.Number)+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	if lastID > 0 {
		query = query.Where("id > ?", snowflake.ID(lastID))
	}

	var invoices []invoicedomain.Invoice
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("id ASC").
		Limit(limit).
		Find(&invoices).Error; err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	resp := invoicedomain.ListInvoiceResponse{Invoices: invoices}
	resp.TotalSize = total
	if len(invoices) == limit {
		resp.NextPageToken = pagination.EncodeToken(int64(invoices[len(invoices)-1].ID))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidAccount
	}
	invoiceID, err := invoicedomain.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, accountID, invoiceID)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*invoicedomain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidAccount
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, invoicedomain.ErrInvalidNumber
	}

	var invoice invoicedomain.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("account_id = ? AND number = ?", accountID, number).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invoicedomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Service) Update(ctx context.Context, req invoicedomain.UpdateInvoiceRequest) (*invoicedomain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidAccount
	}
	invoiceID, err := invoicedomain.ParseID(req.ID)
	if err != nil {
		return nil, err
	}

	var updated *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(ctx, tx, accountID, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != invoicedomain.StatusDraft {
			return invoicedomain.ErrNotEditable
		}

		if req.CustomerID != nil {
			customerID, err := snowflake.ParseString(strings.TrimSpace(*req.CustomerID))
			if err != nil {
				return invoicedomain.ErrInvalidCustomer
			}
			if err := s.customerExists(ctx, accountID, customerID); err != nil {
				return err
			}
			invoice.CustomerID = customerID
		}
		if req.Number != nil {
			number := strings.TrimSpace(*req.Number)
			if number == "" {
				return invoicedomain.ErrInvalidNumber
			}
			invoice.Number = number
		}
		if req.IssuedAt != nil {
			invoice.IssuedAt = req.IssuedAt
		}
		if req.DueAt != nil {
			invoice.DueAt = req.DueAt
		}
		if req.Notes != nil {
			invoice.Notes = *req.Notes
		}

		now := s.clock.Now()
		if req.Items != nil {
			draft := &invoicedomain.Draft{
				CustomerID: invoice.CustomerID.String(),
				Number:     invoice.Number,
				Items:      req.Items,
			}
			if fieldErrs := draft.Validate(); len(fieldErrs) > 0 {
				return &invoicedomain.ValidationError{Fields: fieldErrs}
			}
			if err := tx.WithContext(ctx).
				Where("invoice_id = ?", invoice.ID).
				Delete(&invoicedomain.LineItem{}).Error; err != nil {
				return err
			}
			invoice.Items = buildItems(s.genID, invoice.ID, req.Items, now)
			if err := tx.WithContext(ctx).Create(&invoice.Items).Error; err != nil {
				return err
			}
		}

		if err := s.recompute(invoice); err != nil {
			return err
		}
		invoice.UpdatedAt = now
		if err := tx.WithContext(ctx).Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) AddItem(ctx context.Context, invoiceID string, item invoicedomain.DraftItem) (*invoicedomain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidAccount
	}
	id, err := invoicedomain.ParseID(invoiceID)
	if err != nil {
		return nil, err
	}

	var updated *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(ctx, tx, accountID, id)
		if err != nil {
			return err
		}
		if invoice.Status != invoicedomain.StatusDraft {
			return invoicedomain.ErrNotEditable
		}

		if fieldErrs := validateItem(item); len(fieldErrs) > 0 {
			return &invoicedomain.ValidationError{Fields: fieldErrs}
		}

		position := 0
		for _, existing := range invoice.Items {
			if existing.Position > position {
				position = existing.Position
			}
		}

		now := s.clock.Now()
		lineTotal, err := invoicedomain.LineTotal(invoicedomain.LineInput{
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxPercent:      item.TaxPercent,
			DiscountPercent: item.DiscountPercent,
		})
		if err != nil {
			return err
		}
		line := invoicedomain.LineItem{
			ID:              s.genID.Generate(),
			InvoiceID:       invoice.ID,
			Position:        position + 1,
			Description:     strings.TrimSpace(item.Description),
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxPercent:      item.TaxPercent,
			DiscountPercent: item.DiscountPercent,
			LineTotal:       lineTotal,
			CreatedAt:       now,
		}
		if err := tx.WithContext(ctx).Create(&line).Error; err != nil {
			return err
		}
		invoice.Items = append(invoice.Items, line)

		if err := s.recompute(invoice); err != nil {
			return err
		}
		invoice.UpdatedAt = now
		if err := tx.WithContext(ctx).Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) RemoveItem(ctx context.Context, invoiceID, itemID string) (*invoicedomain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidAccount
	}
	id, err := invoicedomain.ParseID(invoiceID)
	if err != nil {
		return nil, err
	}
	lineID, err := invoicedomain.ParseID(itemID)
	if err != nil {
		return nil, err
	}

	var updated *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(ctx, tx, accountID, id)
		if err != nil {
			return err
		}
		if invoice.Status != invoicedomain.StatusDraft {
			return invoicedomain.ErrNotEditable
		}
		if len(invoice.Items) <= 1 {
			return invoicedomain.ErrLastItem
		}

		idx := -1
		for i, existing := range invoice.Items {
			if existing.ID == lineID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return invoicedomain.ErrItemNotFound
		}

		if err := tx.WithContext(ctx).
			Where("id = ? AND invoice_id = ?", lineID, invoice.ID).
			Delete(&invoicedomain.LineItem{}).Error; err != nil {
			return err
		}
		invoice.Items = append(invoice.Items[:idx], invoice.Items[idx+1:]...)

		if err := s.recompute(invoice); err != nil {
			return err
		}
		invoice.UpdatedAt = s.clock.Now()
		if err := tx.WithContext(ctx).Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Send(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidAccount
	}
	invoiceID, err := invoicedomain.ParseID(id)
	if err != nil {
		return nil, err
	}

	var updated *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(ctx, tx, accountID, invoiceID)
		if err != nil {
			return err
		}
		if err := invoicedomain.Transition(invoice.Status, invoicedomain.StatusSent); err != nil {
			return err
		}
		draft := &invoicedomain.Draft{
			CustomerID: invoice.CustomerID.String(),
			Number:     invoice.Number,
			Items:      draftItems(invoice.Items),
		}
		if fieldErrs := draft.Validate(); len(fieldErrs) > 0 {
			return &invoicedomain.ValidationError{Fields: fieldErrs}
		}

		now := s.clock.Now()
		invoice.Status = invoicedomain.StatusSent
		if invoice.IssuedAt == nil {
			invoice.IssuedAt = &now
		}
		if invoice.DueAt == nil {
			due := now.AddDate(0, 0, 30)
			invoice.DueAt = &due
		}
		invoice.UpdatedAt = now
		if err := tx.WithContext(ctx).Omit("Items").Save(invoice).Error; err != nil {
			return err
		}

		if err := s.postSendEntry(ctx, tx, invoice, now); err != nil {
			return err
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			AccountID: accountID,
			Type:      events.EventInvoiceSent,
			Payload: events.InvoicePayload{
				InvoiceID: invoice.ID.String(),
				Number:    invoice.Number,
				Status:    string(invoice.Status),
			}.ToMap(),
			DedupeKey: "invoice_sent:" + invoice.ID.String(),
		}); err != nil {
			return err
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Void(ctx context.Context, id string, reason string) (*invoicedomain.Invoice, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidAccount
	}
	invoiceID, err := invoicedomain.ParseID(id)
	if err != nil {
		return nil, err
	}

	var updated *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(ctx, tx, accountID, invoiceID)
		if err != nil {
			return err
		}
		if err := invoicedomain.Transition(invoice.Status, invoicedomain.StatusVoid); err != nil {
			return err
		}

		now := s.clock.Now()
		invoice.Status = invoicedomain.StatusVoid
		if invoice.Metadata == nil {
			invoice.Metadata = datatypes.JSONMap{}
		}
		if reason = strings.TrimSpace(reason); reason != "" {
			invoice.Metadata["void_reason"] = reason
		}
		invoice.Metadata["voided_at"] = now.Format(time.RFC3339)
		invoice.UpdatedAt = now
		if err := tx.WithContext(ctx).Omit("Items").Save(invoice).Error; err != nil {
			return err
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			AccountID: accountID,
			Type:      events.EventInvoiceVoided,
			Payload: events.InvoicePayload{
				InvoiceID: invoice.ID.String(),
				Number:    invoice.Number,
				Status:    string(invoice.Status),
			}.ToMap(),
			DedupeKey: "invoice_voided:" + invoice.ID.String(),
		}); err != nil {
			return err
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Settle(ctx context.Context, tx *gorm.DB, accountID, invoiceID snowflake.ID, amount decimal.Decimal, paidAt time.Time) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}

	invoice, err := s.load(ctx, tx, accountID, invoiceID)
	if err != nil {
		return err
	}
	if err := invoicedomain.Transition(invoice.Status, invoicedomain.StatusPaid); err != nil {
		return err
	}
	// Settlement is full-amount only. Partial or excess submissions stay
	// pending so the operator can reject them.
	if !amount.Equal(invoice.GrandTotal) {
		return invoicedomain.ErrAmountMismatch
	}

	invoice.Status = invoicedomain.StatusPaid
	invoice.PaidAt = &paidAt
	if invoice.Metadata == nil {
		invoice.Metadata = datatypes.JSONMap{}
	}
	invoice.Metadata["amount_paid"] = amount.String()
	invoice.UpdatedAt = s.clock.Now()
	if err := tx.WithContext(ctx).Omit("Items").Save(invoice).Error; err != nil {
		return err
	}

	if err := s.postSettleEntry(ctx, tx, invoice, amount, paidAt); err != nil {
		return err
	}

	return s.outbox.PublishTx(ctx, tx, events.Event{
		AccountID: accountID,
		Type:      events.EventInvoicePaid,
		Payload: events.InvoicePayload{
			InvoiceID: invoice.ID.String(),
			Number:    invoice.Number,
			Status:    string(invoice.Status),
		}.ToMap(),
		DedupeKey: "invoice_paid:" + invoice.ID.String(),
	})
}

// postSendEntry books the receivable when an invoice goes out: AR is
// debited for the grand total, revenue and tax payable are credited.
func (s *Service) postSendEntry(ctx context.Context, tx *gorm.DB, invoice *invoicedomain.Invoice, now time.Time) error {
	arID, err := s.ledgerSvc.EnsureAccount(ctx, tx, invoice.AccountID, ledgerdomain.AccountCodeAccountsReceivable, "Accounts Receivable")
	if err != nil {
		return err
	}
	revenueID, err := s.ledgerSvc.EnsureAccount(ctx, tx, invoice.AccountID, ledgerdomain.AccountCodeRevenue, "Revenue")
	if err != nil {
		return err
	}

	grand := minorUnits(invoice.GrandTotal)
	tax := minorUnits(invoice.TotalTax)

	lines := []ledgerdomain.LedgerEntryLine{
		{AccountID: arID, Direction: ledgerdomain.LedgerEntryDirectionDebit, Amount: grand},
		{AccountID: revenueID, Direction: ledgerdomain.LedgerEntryDirectionCredit, Amount: grand - tax},
	}
	if tax > 0 {
		taxID, err := s.ledgerSvc.EnsureAccount(ctx, tx, invoice.AccountID, ledgerdomain.AccountCodeTaxPayable, "Tax Payable")
		if err != nil {
			return err
		}
		lines = append(lines, ledgerdomain.LedgerEntryLine{
			AccountID: taxID,
			Direction: ledgerdomain.LedgerEntryDirectionCredit,
			Amount:    tax,
		})
	}

	return s.ledgerSvc.CreateEntryTx(ctx, tx, invoice.AccountID, ledgerdomain.SourceTypeInvoice, invoice.ID, invoice.Currency, now, lines)
}

// postSettleEntry clears the receivable on payment: cash is debited,
// AR is credited.
func (s *Service) postSettleEntry(ctx context.Context, tx *gorm.DB, invoice *invoicedomain.Invoice, amount decimal.Decimal, paidAt time.Time) error {
	cashID, err := s.ledgerSvc.EnsureAccount(ctx, tx, invoice.AccountID, ledgerdomain.AccountCodeCashClearing, "Cash / Clearing")
	if err != nil {
		return err
	}
	arID, err := s.ledgerSvc.EnsureAccount(ctx, tx, invoice.AccountID, ledgerdomain.AccountCodeAccountsReceivable, "Accounts Receivable")
	if err != nil {
		return err
	}

	value := minorUnits(amount)
	lines := []ledgerdomain.LedgerEntryLine{
		{AccountID: cashID, Direction: ledgerdomain.LedgerEntryDirectionDebit, Amount: value},
		{AccountID: arID, Direction: ledgerdomain.LedgerEntryDirectionCredit, Amount: value},
	}
	return s.ledgerSvc.CreateEntryTx(ctx, tx, invoice.AccountID, ledgerdomain.SourceTypePayment, invoice.ID, invoice.Currency, paidAt, lines)
}

func (s *Service) load(ctx context.Context, db *gorm.DB, accountID, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("account_id = ? AND id = ?", accountID, invoiceID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invoicedomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Service) customerExists(ctx context.Context, accountID, customerID snowflake.ID) error {
	var found snowflake.ID
	if err := s.db.WithContext(ctx).Raw(
		`SELECT id FROM customers WHERE account_id = ? AND id = ?`,
		accountID,
		customerID,
	).Scan(&found).Error; err != nil {
		return err
	}
	if found == 0 {
		return invoicedomain.ErrInvalidCustomer
	}
	return nil
}

// recompute rebuilds the derived totals from the current items. Totals
// are never carried forward from a previous state.
func (s *Service) recompute(invoice *invoicedomain.Invoice) error {
	lines := make([]invoicedomain.LineInput, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		lines = append(lines, invoicedomain.LineInput{
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxPercent:      item.TaxPercent,
			DiscountPercent: item.DiscountPercent,
		})
	}
	totals, err := invoicedomain.ComputeTotals(lines)
	if err != nil {
		return err
	}
	invoice.Subtotal = totals.Subtotal
	invoice.TotalTax = totals.TotalTax
	invoice.TotalDiscount = totals.TotalDiscount
	invoice.GrandTotal = totals.GrandTotal
	return nil
}

func buildItems(genID *snowflake.Node, invoiceID snowflake.ID, items []invoicedomain.DraftItem, now time.Time) []invoicedomain.LineItem {
	built := make([]invoicedomain.LineItem, 0, len(items))
	for i, item := range items {
		lineTotal, err := invoicedomain.LineTotal(invoicedomain.LineInput{
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxPercent:      item.TaxPercent,
			DiscountPercent: item.DiscountPercent,
		})
		if err != nil {
			lineTotal = decimal.Zero
		}
		built = append(built, invoicedomain.LineItem{
			ID:              genID.Generate(),
			InvoiceID:       invoiceID,
			Position:        i + 1,
			Description:     strings.TrimSpace(item.Description),
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxPercent:      item.TaxPercent,
			DiscountPercent: item.DiscountPercent,
			LineTotal:       lineTotal,
			CreatedAt:       now,
		})
	}
	return built
}

func draftItems(items []invoicedomain.LineItem) []invoicedomain.DraftItem {
	out := make([]invoicedomain.DraftItem, 0, len(items))
	for _, item := range items {
		out = append(out, invoicedomain.DraftItem{
			Position:        item.Position,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxPercent:      item.TaxPercent,
			DiscountPercent: item.DiscountPercent,
		})
	}
	return out
}

func validateItem(item invoicedomain.DraftItem) []invoicedomain.FieldError {
	draft := &invoicedomain.Draft{Items: []invoicedomain.DraftItem{item}}
	fieldErrs := draft.Validate()
	out := fieldErrs[:0]
	for _, fieldErr := range fieldErrs {
		if fieldErr.Field == "customer_id" || fieldErr.Field == "number" {
			continue
		}
		out = append(out, fieldErr)
	}
	return out
}

func minorUnits(value decimal.Decimal) int64 {
	return value.Shift(2).Round(0).IntPart()
}
