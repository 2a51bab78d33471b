package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/faktura/internal/payment/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

// 10 MiB cap on uploaded receipts.
const maxReceiptSize = 10 << 20

// @Summary      Submit Payment
// @Description  Report a payment against an invoice, optionally with a receipt upload
// @Tags         payments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        invoice_id      formData  string  false  "Invoice ID"
// @Param        invoice_number  formData  string  false  "Invoice Number"
// @Param        amount          formData  string  true   "Amount"
// @Param        method          formData  string  true   "Payment Method"
// @Param        reference       formData  string  false  "Bank Reference"
// @Param        notes           formData  string  false  "Notes"
// @Param        receipt         formData  file    false  "Receipt"
// @Success      200  {object}  paymentdomain.PaymentSubmission
// @Router       /payments [post]
func (s *Server) SubmitPayment(c *gin.Context) {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("amount")))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount must be a decimal number"))
		return
	}

	req := paymentdomain.SubmitPaymentRequest{
		InvoiceID:     strings.TrimSpace(c.PostForm("invoice_id")),
		InvoiceNumber: strings.TrimSpace(c.PostForm("invoice_number")),
		Amount:        amount,
		Method:        strings.TrimSpace(c.PostForm("method")),
		Reference:     strings.TrimSpace(c.PostForm("reference")),
		Notes:         strings.TrimSpace(c.PostForm("notes")),
	}

	if fileHeader, err := c.FormFile("receipt"); err == nil && fileHeader != nil {
		if fileHeader.Size > maxReceiptSize {
			AbortWithError(c, newValidationError("receipt", "too_large", "receipt exceeds the size limit"))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxReceiptSize+1))
		file.Close()
		if err != nil || len(data) > maxReceiptSize {
			AbortWithError(c, invalidRequestError())
			return
		}
		req.Receipt = &paymentdomain.Receipt{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	resp, err := s.paymentSvc.Submit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Payments
// @Description  List payment submissions with optional filters
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        invoice_id  query     string  false  "Invoice ID"
// @Param        status      query     string  false  "Status"
// @Param        page_token  query     string  false  "Page Token"
// @Param        page_size   query     int     false  "Page Size"
// @Success      200  {object}  paymentdomain.ListPaymentResponse
// @Router       /payments [get]
func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		InvoiceID string `form:"invoice_id"`
		Status    string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListPaymentRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		InvoiceID: strings.TrimSpace(query.InvoiceID),
		Status:    paymentdomain.Status(strings.TrimSpace(query.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Payment
// @Description  Get a payment submission by ID
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  paymentdomain.PaymentSubmission
// @Router       /payments/{id} [get]
func (s *Server) GetPaymentByID(c *gin.Context) {
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Approve Payment
// @Description  Verify a pending payment and settle its invoice
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  paymentdomain.PaymentSubmission
// @Router       /payments/{id}/approve [post]
func (s *Server) ApprovePayment(c *gin.Context) {
	resp, err := s.paymentSvc.Approve(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type rejectPaymentRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Reject Payment
// @Description  Reject a pending payment submission
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path   string                true   "Payment ID"
// @Param        request body   rejectPaymentRequest  false  "Reject Request"
// @Success      200  {object}  paymentdomain.PaymentSubmission
// @Router       /payments/{id}/reject [post]
func (s *Server) RejectPayment(c *gin.Context) {
	var req rejectPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.paymentSvc.Reject(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Receipt Link
// @Description  Return a time-limited download link for an uploaded receipt
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  map[string]string
// @Router       /payments/{id}/receipt [get]
func (s *Server) GetPaymentReceipt(c *gin.Context) {
	url, err := s.paymentSvc.ReceiptURL(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"url": url}})
}
