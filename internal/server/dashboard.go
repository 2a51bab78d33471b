package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary      Dashboard Summary
// @Description  Headline figures for the account: revenue, drafts, pending payments
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboarddomain.SummaryResponse
// @Router       /dashboard/summary [get]
func (s *Server) GetDashboardSummary(c *gin.Context) {
	resp, err := s.dashboardSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Outstanding Receivables
// @Description  Sent and overdue invoices ordered by due date
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboarddomain.ReceivablesResponse
// @Router       /dashboard/receivables [get]
func (s *Server) GetDashboardReceivables(c *gin.Context) {
	resp, err := s.dashboardSvc.Receivables(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Expense Breakdown
// @Description  Expense totals grouped by category over an optional date range
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "From"
// @Param        to    query     string  false  "To"
// @Success      200  {object}  dashboarddomain.ExpenseBreakdownResponse
// @Router       /dashboard/expenses [get]
func (s *Server) GetDashboardExpenses(c *gin.Context) {
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}

	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.dashboardSvc.ExpenseBreakdown(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Recent Activity
// @Description  Most recent audit events for the account
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Limit"
// @Success      200  {object}  dashboarddomain.ActivityResponse
// @Router       /dashboard/activity [get]
func (s *Server) GetDashboardActivity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	resp, err := s.dashboardSvc.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
