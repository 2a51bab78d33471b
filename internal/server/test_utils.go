package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup deletes every account whose email starts with the given
// prefix, along with all of its data. Only mounted outside production.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.IsProduction() {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	ctx := c.Request.Context()
	accountIDs, err := s.loadAccountIDsByPrefix(ctx, prefix)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.deleteAccountData(ctx, accountIDs); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) loadAccountIDsByPrefix(ctx context.Context, prefix string) ([]int64, error) {
	like := strings.TrimSpace(prefix) + "%"
	var accountIDs []int64
	if err := s.db.WithContext(ctx).
		Table("users").
		Select("id").
		Where("email LIKE ?", like).
		Scan(&accountIDs).Error; err != nil {
		return nil, err
	}
	return accountIDs, nil
}

func (s *Server) deleteAccountData(ctx context.Context, accountIDs []int64) error {
	if len(accountIDs) == 0 {
		return nil
	}
	queries := []string{
		`DELETE FROM outbox_events WHERE account_id IN ?`,
		`DELETE FROM audit_logs WHERE account_id IN ?`,
		`DELETE FROM ledger_entry_lines WHERE ledger_entry_id IN (SELECT id FROM ledger_entries WHERE account_id IN ?)`,
		`DELETE FROM ledger_entries WHERE account_id IN ?`,
		`DELETE FROM ledger_accounts WHERE account_id IN ?`,
		`DELETE FROM payment_submissions WHERE account_id IN ?`,
		`DELETE FROM invoice_line_items WHERE invoice_id IN (SELECT id FROM invoices WHERE account_id IN ?)`,
		`DELETE FROM invoices WHERE account_id IN ?`,
		`DELETE FROM expenses WHERE account_id IN ?`,
		`DELETE FROM customers WHERE account_id IN ?`,
		`DELETE FROM users WHERE id IN ?`,
	}
	for _, query := range queries {
		if err := s.db.WithContext(ctx).Exec(query, accountIDs).Error; err != nil {
			return err
		}
	}
	return nil
}
