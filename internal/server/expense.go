package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	expensedomain "github.com/smallbiznis/faktura/internal/expense/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type createExpenseRequest struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Vendor      string          `json:"vendor"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	IncurredAt  *time.Time      `json:"incurred_at"`
	Notes       string          `json:"notes"`
}

// @Summary      Create Expense
// @Description  Record a business expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body createExpenseRequest true "Create Expense Request"
// @Success      200  {object}  expensedomain.Expense
// @Router       /expenses [post]
func (s *Server) CreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.expenseSvc.Create(c.Request.Context(), expensedomain.CreateExpenseRequest{
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Vendor:      strings.TrimSpace(req.Vendor),
		Amount:      req.Amount,
		Currency:    strings.TrimSpace(req.Currency),
		IncurredAt:  req.IncurredAt,
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Expenses
// @Description  List expenses with optional filters
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        category       query     string  false  "Category"
// @Param        incurred_from  query     string  false  "Incurred From"
// @Param        incurred_to    query     string  false  "Incurred To"
// @Param        page_token     query     string  false  "Page Token"
// @Param        page_size      query     int     false  "Page Size"
// @Success      200  {object}  expensedomain.ListExpenseResponse
// @Router       /expenses [get]
func (s *Server) ListExpenses(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Category     string `form:"category"`
		IncurredFrom string `form:"incurred_from"`
		IncurredTo   string `form:"incurred_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	incurredFrom, err := parseOptionalTime(query.IncurredFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("incurred_from", "invalid_incurred_from", "invalid incurred_from"))
		return
	}

	incurredTo, err := parseOptionalTime(query.IncurredTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("incurred_to", "invalid_incurred_to", "invalid incurred_to"))
		return
	}

	resp, err := s.expenseSvc.List(c.Request.Context(), expensedomain.ListExpenseRequest{
		PageToken:    query.PageToken,
		PageSize:     int32(query.PageSize),
		Category:     strings.TrimSpace(query.Category),
		IncurredFrom: incurredFrom,
		IncurredTo:   incurredTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Expense
// @Description  Get expense by ID
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  expensedomain.Expense
// @Router       /expenses/{id} [get]
func (s *Server) GetExpenseByID(c *gin.Context) {
	resp, err := s.expenseSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateExpenseRequest struct {
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Vendor      *string          `json:"vendor"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    *string          `json:"currency"`
	IncurredAt  *time.Time       `json:"incurred_at"`
	Notes       *string          `json:"notes"`
}

// @Summary      Update Expense
// @Description  Update expense fields
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path   string                true  "Expense ID"
// @Param        request body   updateExpenseRequest  true  "Update Expense Request"
// @Success      200  {object}  expensedomain.Expense
// @Router       /expenses/{id} [patch]
func (s *Server) UpdateExpense(c *gin.Context) {
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.expenseSvc.Update(c.Request.Context(), expensedomain.UpdateExpenseRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Category:    req.Category,
		Description: req.Description,
		Vendor:      req.Vendor,
		Amount:      req.Amount,
		Currency:    req.Currency,
		IncurredAt:  req.IncurredAt,
		Notes:       req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Expense
// @Description  Delete an expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  map[string]string
// @Router       /expenses/{id} [delete]
func (s *Server) DeleteExpense(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.expenseSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.AuditLog(c.Request.Context(), nil, "", nil, "expense.delete", "expense", &id, nil)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
