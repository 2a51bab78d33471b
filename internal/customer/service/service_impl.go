package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/accountcontext"
	"github.com/smallbiznis/faktura/internal/clock"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
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

func NewService(p Params) customerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (*customerdomain.Customer, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, customerdomain.ErrInvalidAccount
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, customerdomain.ErrInvalidName
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency != "" && len(currency) != 3 {
		return nil, customerdomain.ErrInvalidCurrency
	}

	now := s.clock.Now()
	customer := &customerdomain.Customer{
		ID:        s.genID.Generate(),
		AccountID: accountID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT COUNT(1) FROM customers WHERE account_id = ? AND email = ?`,
			accountID,
			email,
		).Scan(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return customerdomain.ErrDuplicateEmail
		}
		return tx.WithContext(ctx).Create(customer).Error
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context, req customerdomain.ListCustomerRequest) (customerdomain.ListCustomerResponse, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return customerdomain.ListCustomerResponse{}, customerdomain.ErrInvalidAccount
	}

	lastID, err := pagination.DecodeToken(req.PageToken)
	if err != nil {
		return customerdomain.ListCustomerResponse{}, err
	}
	limit := pagination.Limit(req.PageSize)

	query := s.db.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("account_id = ?", accountID)
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Email != "" {
		query = query.Where("email LIKE ?", "%"+strings.ToLower(req.Email)+"%")
	}
	if req.Currency != "" {
		query = query.Where("currency = ?", strings.ToUpper(req.Currency))
	}
	if req.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *req.CreatedFrom)
	}
	if req.CreatedTo != nil {
		query = query.Where("created_at < ?", *req.CreatedTo)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return customerdomain.ListCustomerResponse{}, err
	}

	if lastID > 0 {
		query = query.Where("id > ?", snowflake.ID(lastID))
	}

	var customers []customerdomain.Customer
	if err := query.Order("id ASC").Limit(limit).Find(&customers).Error; err != nil {
		return customerdomain.ListCustomerResponse{}, err
	}

	resp := customerdomain.ListCustomerResponse{Customers: customers}
	resp.TotalSize = total
	if len(customers) == limit {
		resp.NextPageToken = pagination.EncodeToken(int64(customers[len(customers)-1].ID))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req customerdomain.GetCustomerRequest) (*customerdomain.Customer, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, customerdomain.ErrInvalidAccount
	}
	customerID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, accountID, customerID)
}

func (s *Service) Update(ctx context.Context, req customerdomain.UpdateCustomerRequest) (*customerdomain.Customer, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return nil, customerdomain.ErrInvalidAccount
	}
	customerID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var updated *customerdomain.Customer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.load(ctx, tx, accountID, customerID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return customerdomain.ErrInvalidName
			}
			customer.Name = name
		}
		if req.Email != nil {
			email, err := normalizeEmail(*req.Email)
			if err != nil {
				return err
			}
			if email != customer.Email {
				var count int64
				if err := tx.WithContext(ctx).Raw(
					`SELECT COUNT(1) FROM customers WHERE account_id = ? AND email = ? AND id <> ?`,
					accountID,
					email,
					customer.ID,
				).Scan(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return customerdomain.ErrDuplicateEmail
				}
			}
			customer.Email = email
		}
		if req.Phone != nil {
			customer.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Address != nil {
			customer.Address = strings.TrimSpace(*req.Address)
		}
		if req.Currency != nil {
			currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
			if currency != "" && len(currency) != 3 {
				return customerdomain.ErrInvalidCurrency
			}
			customer.Currency = currency
		}

		customer.UpdatedAt = s.clock.Now()
		if err := tx.WithContext(ctx).Save(customer).Error; err != nil {
			return err
		}
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, req customerdomain.GetCustomerRequest) error {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return customerdomain.ErrInvalidAccount
	}
	customerID, err := parseID(req.ID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.load(ctx, tx, accountID, customerID); err != nil {
			return err
		}

		var count int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT COUNT(1) FROM invoices WHERE account_id = ? AND customer_id = ?`,
			accountID,
			customerID,
		).Scan(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return customerdomain.ErrHasInvoices
		}

		return tx.WithContext(ctx).
			Where("account_id = ? AND id = ?", accountID, customerID).
			Delete(&customerdomain.Customer{}).Error
	})
}

func (s *Service) load(ctx context.Context, db *gorm.DB, accountID, customerID snowflake.ID) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, customerID).
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customerdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func parseID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, customerdomain.ErrInvalidID
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, customerdomain.ErrInvalidID
	}
	return id, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", customerdomain.ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", customerdomain.ErrInvalidEmail
	}
	return email, nil
}
