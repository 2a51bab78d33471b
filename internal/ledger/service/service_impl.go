package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/faktura/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
	}
}

func (s *Service) CreateEntry(
	ctx context.Context,
	accountID snowflake.ID,
	sourceType string,
	sourceID snowflake.ID,
	currency string,
	occurredAt time.Time,
	lines []ledgerdomain.LedgerEntryLine,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.CreateEntryTx(ctx, tx, accountID, sourceType, sourceID, currency, occurredAt, lines)
	})
}

func (s *Service) CreateEntryTx(
	ctx context.Context,
	tx *gorm.DB,
	accountID snowflake.ID,
	sourceType string,
	sourceID snowflake.ID,
	currency string,
	occurredAt time.Time,
	lines []ledgerdomain.LedgerEntryLine,
) error {
	if accountID == 0 {
		return ledgerdomain.ErrInvalidOwner
	}
	sourceType = strings.TrimSpace(sourceType)
	if sourceType == "" {
		return ledgerdomain.ErrInvalidSourceType
	}
	if sourceID == 0 {
		return ledgerdomain.ErrInvalidSourceID
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return ledgerdomain.ErrInvalidCurrency
	}
	if occurredAt.IsZero() {
		return ledgerdomain.ErrInvalidOccurredAt
	}
	if err := ledgerdomain.ValidateBalanced(lines); err != nil {
		return err
	}

	now := time.Now().UTC()
	entry := ledgerdomain.LedgerEntry{
		ID:         s.genID.Generate(),
		AccountID:  accountID,
		SourceType: sourceType,
		SourceID:   sourceID,
		Currency:   currency,
		OccurredAt: occurredAt.UTC(),
		CreatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return err
	}

	for i := range lines {
		lines[i].ID = s.genID.Generate()
		lines[i].LedgerEntryID = entry.ID
		lines[i].CreatedAt = now
	}
	if err := tx.WithContext(ctx).Create(&lines).Error; err != nil {
		return err
	}

	s.log.Debug("ledger entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("source_type", sourceType),
		zap.Int("lines", len(lines)),
	)
	return nil
}

func (s *Service) EnsureAccount(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, code, name string) (snowflake.ID, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, ledgerdomain.ErrInvalidAccount
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ledgerdomain.ErrInvalidAccount
	}
	if tx == nil {
		tx = s.db
	}

	var ledgerAccountID snowflake.ID
	if err := tx.WithContext(ctx).Raw(
		`SELECT id
		 FROM ledger_accounts
		 WHERE account_id = ? AND code = ?`,
		accountID,
		code,
	).Scan(&ledgerAccountID).Error; err != nil {
		return 0, err
	}
	if ledgerAccountID != 0 {
		return ledgerAccountID, nil
	}

	account := ledgerdomain.LedgerAccount{
		ID:        s.genID.Generate(),
		AccountID: accountID,
		Code:      code,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&account).Error; err != nil {
		return 0, err
	}
	return account.ID, nil
}
