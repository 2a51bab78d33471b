package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/faktura/internal/report/domain"
)

// @Summary      Export Invoices
// @Description  Generate an invoice workbook; returns a download link or the file itself
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from      query  string  false  "From"
// @Param        to        query  string  false  "To"
// @Param        download  query  bool    false  "Stream the file instead of a link"
// @Success      200  {object}  reportdomain.ExportResult
// @Router       /reports/invoices [get]
func (s *Server) ExportInvoices(c *gin.Context) {
	s.export(c, s.reportSvc.ExportInvoices)
}

// @Summary      Export Expenses
// @Description  Generate an expense workbook; returns a download link or the file itself
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from      query  string  false  "From"
// @Param        to        query  string  false  "To"
// @Param        download  query  bool    false  "Stream the file instead of a link"
// @Success      200  {object}  reportdomain.ExportResult
// @Router       /reports/expenses [get]
func (s *Server) ExportExpenses(c *gin.Context) {
	s.export(c, s.reportSvc.ExportExpenses)
}

func (s *Server) export(c *gin.Context, fn func(ctx context.Context, from, to *time.Time) (*reportdomain.ExportResult, error)) {
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

	result, err := fn(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Stream the workbook when asked for, or when there is no storage
	// backend to hand out a link.
	if c.Query("download") == "true" || result.URL == "" {
		c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
		c.Data(http.StatusOK, result.ContentType, result.Data)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
