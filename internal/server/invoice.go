package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/invoice/render"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

// @Summary      Create Invoice
// @Description  Create an invoice draft with its line items
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body invoicedomain.CreateInvoiceRequest true "Create Invoice Request"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices [post]
func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		accountID := resp.AccountID
		_ = s.auditSvc.AuditLog(c.Request.Context(), &accountID, "", nil, "invoice.create", "invoice", &targetID, map[string]any{
			"number":      resp.Number,
			"grand_total": resp.GrandTotal.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Invoices
// @Description  List invoices with optional filters
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        status       query     string  false  "Status"
// @Param        customer_id  query     string  false  "Customer ID"
// @Param        number       query     string  false  "Number"
// @Param        page_token   query     string  false  "Page Token"
// @Param        page_size    query     int     false  "Page Size"
// @Success      200  {object}  invoicedomain.ListInvoiceResponse
// @Router       /invoices [get]
func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
		Number     string `form:"number"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		Status:     invoicedomain.Status(strings.TrimSpace(query.Status)),
		CustomerID: strings.TrimSpace(query.CustomerID),
		Number:     strings.TrimSpace(query.Number),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Invoice
// @Description  Get invoice by ID, or by number with ?number=
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id} [get]
func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Invoice
// @Description  Update a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path   string                              true  "Invoice ID"
// @Param        request body   invoicedomain.UpdateInvoiceRequest  true  "Update Invoice Request"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id} [patch]
func (s *Server) UpdateInvoice(c *gin.Context) {
	var req invoicedomain.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.invoiceSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Add Line Item
// @Description  Append a line item to a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path   string                   true  "Invoice ID"
// @Param        request body   invoicedomain.DraftItem  true  "Line Item"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id}/items [post]
func (s *Server) AddInvoiceItem(c *gin.Context) {
	var item invoicedomain.DraftItem
	if err := c.ShouldBindJSON(&item); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.AddItem(c.Request.Context(), strings.TrimSpace(c.Param("id")), item)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Remove Line Item
// @Description  Remove a line item from a draft invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id       path   string  true  "Invoice ID"
// @Param        item_id  path   string  true  "Line Item ID"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id}/items/{item_id} [delete]
func (s *Server) RemoveInvoiceItem(c *gin.Context) {
	resp, err := s.invoiceSvc.RemoveItem(
		c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("item_id")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Send Invoice
// @Description  Finalize a draft and mark it sent
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id}/send [post]
func (s *Server) SendInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Send(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		accountID := resp.AccountID
		_ = s.auditSvc.AuditLog(c.Request.Context(), &accountID, "", nil, "invoice.send", "invoice", &targetID, map[string]any{
			"number": resp.Number,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type voidInvoiceRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Void Invoice
// @Description  Void an invoice that will never be collected
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path   string              true   "Invoice ID"
// @Param        request body   voidInvoiceRequest  false  "Void Request"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id}/void [post]
func (s *Server) VoidInvoice(c *gin.Context) {
	var req voidInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.invoiceSvc.Void(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		accountID := resp.AccountID
		_ = s.auditSvc.AuditLog(c.Request.Context(), &accountID, "", nil, "invoice.void", "invoice", &targetID, map[string]any{
			"number": resp.Number,
			"reason": strings.TrimSpace(req.Reason),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Render Invoice HTML
// @Description  Render a printable HTML document for an invoice
// @Tags         invoices
// @Produce      html
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {string}  string
// @Router       /invoices/{id}/html [get]
func (s *Server) RenderInvoiceHTML(c *gin.Context) {
	input, err := s.renderInput(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	html, err := s.htmlRenderer.RenderHTML(*input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// @Summary      Render Invoice PDF
// @Description  Render a PDF document for an invoice
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {file}    binary
// @Router       /invoices/{id}/pdf [get]
func (s *Server) RenderInvoicePDF(c *gin.Context) {
	input, err := s.renderInput(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pdf, err := s.pdfRenderer.RenderPDF(*input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoice_`+input.Invoice.Number+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) renderInput(c *gin.Context) (*render.RenderInput, error) {
	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		return nil, err
	}

	customerName := ""
	customerEmail := ""
	customer, err := s.customerSvc.GetByID(c.Request.Context(), customerdomain.GetCustomerRequest{
		ID: invoice.CustomerID.String(),
	})
	if err == nil {
		customerName = customer.Name
		customerEmail = customer.Email
	}

	brand := render.BrandView{CompanyName: s.companyName(c)}
	input := render.FromInvoice(invoice, customerName, customerEmail, brand)
	return &input, nil
}

func (s *Server) companyName(c *gin.Context) string {
	accountID, ok := c.Get("account_id")
	if !ok {
		return ""
	}
	var name string
	if err := s.db.WithContext(c.Request.Context()).Raw(
		`SELECT COALESCE(NULLIF(company_name, ''), name) FROM users WHERE id = ?`,
		accountID,
	).Scan(&name).Error; err != nil {
		return ""
	}
	return name
}
