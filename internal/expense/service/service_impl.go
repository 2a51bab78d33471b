package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/accountcontext"
	"github.com/smallbiznis/faktura/internal/clock"
	expensedomain "github.com/smallbiznis/faktura/internal/expense/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) expensedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("expense.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req expensedomain.CreateExpenseRequest) (*expensedomain.Expense, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, expensedomain.ErrInvalidAccount
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		return nil, expensedomain.ErrInvalidCategory
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, expensedomain.ErrInvalidDescription
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, expensedomain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, expensedomain.ErrInvalidCurrency
	}

	now := s.clock.Now()
	incurredAt := now
	if req.IncurredAt != nil {
		incurredAt = *req.IncurredAt
	}

	expense := &expensedomain.Expense{
		ID:          s.genID.Generate(),
		AccountID:   accountID,
		Category:    category,
		Description: description,
		Vendor:      strings.TrimSpace(req.Vendor),
		Amount:      req.Amount,
		Currency:    currency,
		IncurredAt:  incurredAt,
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *Service) List(ctx context.Context, req expensedomain.ListExpenseRequest) (expensedomain.ListExpenseResponse, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return expensedomain.ListExpenseResponse{}, expensedomain.ErrInvalidAccount
	}

	lastID, err := pagination.DecodeToken(req.PageToken)
	if err != nil {
		return expensedomain.ListExpenseResponse{}, err
	}
	limit := pagination.Limit(req.PageSize)

	query := s.db.WithContext(ctx).
		Model(&expensedomain.Expense{}).
		Where("account_id = ?", accountID)
	if req.Category != "" {
		query = query.Where("category = ?", strings.ToLower(req.Category))
	}
	if req.IncurredFrom != nil {
		query = query.Where("incurred_at >= ?", *req.IncurredFrom)
	}
	if req.IncurredTo != nil {
		query = query.Where("incurred_at < ?", *req.IncurredTo)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return expensedomain.ListExpenseResponse{}, err
	}

	if lastID > 0 {
		query = query.Where("id > ?", snowflake.ID(lastID))
	}

	var expenses []expensedomain.Expense
	if err := query.Order("id ASC").Limit(limit).Find(&expenses).Error; err != nil {
		return expensedomain.ListExpenseResponse{}, err
	}

	resp := expensedomain.ListExpenseResponse{Expenses: expenses}
	resp.TotalSize = total
	if len(expenses) == limit {
		resp.NextPageToken = pagination.EncodeToken(int64(expenses[len(expenses)-1].ID))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*expensedomain.Expense, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, expensedomain.ErrInvalidAccount
	}
	expenseID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, accountID, expenseID)
}

func (s *Service) Update(ctx context.Context, req expensedomain.UpdateExpenseRequest) (*expensedomain.Expense, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, expensedomain.ErrInvalidAccount
	}
	expenseID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var updated *expensedomain.Expense
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expense, err := s.load(ctx, tx, accountID, expenseID)
		if err != nil {
			return err
		}

		if req.Category != nil {
			category := strings.ToLower(strings.TrimSpace(*req.Category))
			if category == "" {
				return expensedomain.ErrInvalidCategory
			}
			expense.Category = category
		}
		if req.Description != nil {
			description := strings.TrimSpace(*req.Description)
			if description == "" {
				return expensedomain.ErrInvalidDescription
			}
			expense.Description = description
		}
		if req.Vendor != nil {
			expense.Vendor = strings.TrimSpace(*req.Vendor)
		}
		if req.Amount != nil {
			if req.Amount.LessThanOrEqual(decimal.Zero) {
				return expensedomain.ErrInvalidAmount
			}
			expense.Amount = *req.Amount
		}
		if req.Currency != nil {
			currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
			if len(currency) != 3 {
				return expensedomain.ErrInvalidCurrency
			}
			expense.Currency = currency
		}
		if req.IncurredAt != nil {
			expense.IncurredAt = *req.IncurredAt
		}
		if req.Notes != nil {
			expense.Notes = strings.TrimSpace(*req.Notes)
		}

		expense.UpdatedAt = s.clock.Now()
		if err := tx.WithContext(ctx).Save(expense).Error; err != nil {
			return err
		}
		updated = expense
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return expensedomain.ErrInvalidAccount
	}
	expenseID, err := parseID(id)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, expenseID).
		Delete(&expensedomain.Expense{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return expensedomain.ErrNotFound
	}
	return nil
}

func (s *Service) load(ctx context.Context, db *gorm.DB, accountID, expenseID snowflake.ID) (*expensedomain.Expense, error) {
	var expense expensedomain.Expense
	err := db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, expenseID).
		First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, expensedomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func parseID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, expensedomain.ErrInvalidID
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, expensedomain.ErrInvalidID
	}
	return id, nil
}
