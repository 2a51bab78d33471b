package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/accountcontext"
	"github.com/smallbiznis/faktura/internal/auditcontext"
	auditdomain "github.com/smallbiznis/faktura/internal/audit/domain"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/events"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/faktura/internal/payment/domain"
	"github.com/smallbiznis/faktura/internal/storage"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const receiptURLTTL = 15 * time.Minute

var allowedMethods = map[string]bool{
	"bank_transfer": true,
	"cash":          true,
	"card":          true,
	"ewallet":       true,
	"other":         true,
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	InvoiceSvc invoicedomain.Service
	AuditSvc   auditdomain.Service
	Outbox     *events.Outbox
	Storage    *storage.Client
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	invoiceSvc invoicedomain.Service
	auditSvc   auditdomain.Service
	outbox     *events.Outbox
	storage    *storage.Client
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		invoiceSvc: p.InvoiceSvc,
		auditSvc:   p.AuditSvc,
		outbox:     p.Outbox,
		storage:    p.Storage,
	}
}

func (s *Service) Submit(ctx context.Context, req paymentdomain.SubmitPaymentRequest) (*paymentdomain.PaymentSubmission, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, paymentdomain.ErrInvalidAccount
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, paymentdomain.ErrInvalidAmount
	}
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if !allowedMethods[method] {
		return nil, paymentdomain.ErrInvalidMethod
	}

	invoice, err := s.resolveInvoice(ctx, req.InvoiceID, req.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case invoicedomain.StatusSent, invoicedomain.StatusOverdue:
	default:
		return nil, paymentdomain.ErrInvoiceNotPayable
	}

	now := s.clock.Now()
	submission := &paymentdomain.PaymentSubmission{
		ID:        s.genID.Generate(),
		AccountID: accountID,
		InvoiceID: invoice.ID,
		Amount:    req.Amount,
		Currency:  invoice.Currency,
		Status:    paymentdomain.StatusPending,
		Method:    method,
		Reference: strings.TrimSpace(req.Reference),
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.Receipt != nil && len(req.Receipt.Data) > 0 {
		key := receiptKey(submission.ID, req.Receipt.FileName)
		stored, err := s.storage.Upload(ctx, key, req.Receipt.Data, req.Receipt.ContentType)
		if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
			return nil, err
		}
		submission.ReceiptKey = stored
	}

	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, err
	}

	s.audit(ctx, accountID, "payment.submit", submission, map[string]any{
		"invoice_id": invoice.ID.String(),
		"amount":     submission.Amount.String(),
		"method":     submission.Method,
	})
	return submission, nil
}

func (s *Service) List(ctx context.Context, req paymentdomain.ListPaymentRequest) (paymentdomain.ListPaymentResponse, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return paymentdomain.ListPaymentResponse{}, paymentdomain.ErrInvalidAccount
	}

	lastID, err := pagination.DecodeToken(req.PageToken)
	if err != nil {
		return paymentdomain.ListPaymentResponse{}, err
	}
	limit := pagination.Limit(req.PageSize)

	query := s.db.WithContext(ctx).
		Model(&paymentdomain.PaymentSubmission{}).
		Where("account_id = ?", accountID)
	if req.InvoiceID != "" {
		invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
		if err != nil {
			return paymentdomain.ListPaymentResponse{}, paymentdomain.ErrInvalidInvoice
		}
		query = query.Where("invoice_id = ?", invoiceID)
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			return paymentdomain.ListPaymentResponse{}, paymentdomain.ErrInvalidStatus
		}
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return paymentdomain.ListPaymentResponse{}, err
	}

	if lastID > 0 {
		query = query.Where("id > ?", snowflake.ID(lastID))
	}

	var payments []paymentdomain.PaymentSubmission
	if err := query.Order("id ASC").Limit(limit).Find(&payments).Error; err != nil {
		return paymentdomain.ListPaymentResponse{}, err
	}

	resp := paymentdomain.ListPaymentResponse{Payments: payments}
	resp.TotalSize = total
	if len(payments) == limit {
		resp.NextPageToken = pagination.EncodeToken(int64(payments[len(payments)-1].ID))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*paymentdomain.PaymentSubmission, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, paymentdomain.ErrInvalidAccount
	}
	paymentID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, accountID, paymentID, false)
}

func (s *Service) Approve(ctx context.Context, id string) (*paymentdomain.PaymentSubmission, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, paymentdomain.ErrInvalidAccount
	}
	paymentID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var decided *paymentdomain.PaymentSubmission
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submission, err := s.load(ctx, tx, accountID, paymentID, true)
		if err != nil {
			return err
		}
		if err := paymentdomain.Transition(submission.Status, paymentdomain.StatusPaid); err != nil {
			return err
		}

		now := s.clock.Now()
		if err := s.invoiceSvc.Settle(ctx, tx, accountID, submission.InvoiceID, submission.Amount, now); err != nil {
			return err
		}

		submission.Status = paymentdomain.StatusPaid
		submission.DecidedAt = &now
		if _, actorID := auditcontext.ActorFromContext(ctx); actorID != "" {
			submission.DecidedBy = &actorID
		}
		submission.UpdatedAt = now
		if err := tx.WithContext(ctx).Save(submission).Error; err != nil {
			return err
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			AccountID: accountID,
			Type:      events.EventPaymentApproved,
			Payload: events.PaymentPayload{
				PaymentID: submission.ID.String(),
				InvoiceID: submission.InvoiceID.String(),
				Amount:    submission.Amount.String(),
			}.ToMap(),
			DedupeKey: "payment_approved:" + submission.ID.String(),
		}); err != nil {
			return err
		}
		decided = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, accountID, "payment.approve", decided, map[string]any{
		"invoice_id": decided.InvoiceID.String(),
		"amount":     decided.Amount.String(),
	})
	return decided, nil
}

func (s *Service) Reject(ctx context.Context, id string, reason string) (*paymentdomain.PaymentSubmission, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, paymentdomain.ErrInvalidAccount
	}
	paymentID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var decided *paymentdomain.PaymentSubmission
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submission, err := s.load(ctx, tx, accountID, paymentID, true)
		if err != nil {
			return err
		}
		if err := paymentdomain.Transition(submission.Status, paymentdomain.StatusRejected); err != nil {
			return err
		}

		now := s.clock.Now()
		submission.Status = paymentdomain.StatusRejected
		submission.RejectReason = strings.TrimSpace(reason)
		submission.DecidedAt = &now
		if _, actorID := auditcontext.ActorFromContext(ctx); actorID != "" {
			submission.DecidedBy = &actorID
		}
		submission.UpdatedAt = now
		if err := tx.WithContext(ctx).Save(submission).Error; err != nil {
			return err
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			AccountID: accountID,
			Type:      events.EventPaymentRejected,
			Payload: events.PaymentPayload{
				PaymentID: submission.ID.String(),
				InvoiceID: submission.InvoiceID.String(),
			}.ToMap(),
			DedupeKey: "payment_rejected:" + submission.ID.String(),
		}); err != nil {
			return err
		}
		decided = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, accountID, "payment.reject", decided, map[string]any{
		"invoice_id": decided.InvoiceID.String(),
		"reason":     decided.RejectReason,
	})
	return decided, nil
}

func (s *Service) ReceiptURL(ctx context.Context, id string) (string, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return "", paymentdomain.ErrInvalidAccount
	}
	paymentID, err := parseID(id)
	if err != nil {
		return "", err
	}

	submission, err := s.load(ctx, s.db, accountID, paymentID, false)
	if err != nil {
		return "", err
	}
	if submission.ReceiptKey == "" {
		return "", paymentdomain.ErrNoReceipt
	}
	return s.storage.PresignedURL(ctx, submission.ReceiptKey, receiptURLTTL)
}

func (s *Service) resolveInvoice(ctx context.Context, id, number string) (*invoicedomain.Invoice, error) {
	id = strings.TrimSpace(id)
	number = strings.TrimSpace(number)
	switch {
	case id != "":
		invoice, err := s.invoiceSvc.GetByID(ctx, id)
		if err != nil {
			return nil, paymentdomain.ErrInvalidInvoice
		}
		return invoice, nil
	case number != "":
		invoice, err := s.invoiceSvc.GetByNumber(ctx, number)
		if err != nil {
			return nil, paymentdomain.ErrInvalidInvoice
		}
		return invoice, nil
	default:
		return nil, paymentdomain.ErrInvalidInvoice
	}
}

func (s *Service) load(ctx context.Context, db *gorm.DB, accountID, paymentID snowflake.ID, forUpdate bool) (*paymentdomain.PaymentSubmission, error) {
	query := db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, paymentID)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var submission paymentdomain.PaymentSubmission
	err := query.First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, paymentdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *Service) audit(ctx context.Context, accountID snowflake.ID, action string, submission *paymentdomain.PaymentSubmission, metadata map[string]any) {
	if s.auditSvc == nil || submission == nil {
		return
	}
	targetID := submission.ID.String()
	if err := s.auditSvc.AuditLog(ctx, &accountID, "", nil, action, "payment_submission", &targetID, metadata); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func parseID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, paymentdomain.ErrInvalidID
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, paymentdomain.ErrInvalidID
	}
	return id, nil
}

func receiptKey(id snowflake.ID, fileName string) string {
	name := path.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == "/" {
		name = "receipt"
	}
	return fmt.Sprintf("receipts/%s/%s", id.String(), name)
}
