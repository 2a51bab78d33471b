package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/faktura/internal/auth/domain"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	expensedomain "github.com/smallbiznis/faktura/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/faktura/internal/payment/domain"
	reportdomain "github.com/smallbiznis/faktura/internal/report/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

type fieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

func (e *apiError) Error() string { return e.Code }

func invalidRequestError() error {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body or parameters could not be parsed",
	}
}

func newValidationError(field, code, message string) error {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "validation_failed",
		Message: message,
		Fields:  []fieldError{{Field: field, Code: code, Message: message}},
	}
}

// AbortWithError translates domain errors into a consistent JSON error
// envelope. Unknown errors become opaque 500s.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	var validationErr *invoicedomain.ValidationError
	if errors.As(err, &validationErr) {
		fields := make([]fieldError, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			fields = append(fields, fieldError{Field: f.Field, Code: f.Code, Message: f.Message})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": &apiError{
			Code:    "validation_failed",
			Message: "invoice draft failed validation",
			Fields:  fields,
		}})
		return
	}

	status := statusForError(err)
	code := err.Error()
	if status == http.StatusInternalServerError {
		code = "internal_error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": &apiError{Code: code, Message: messageForStatus(status)}})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrItemNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNoReceipt),
		errors.Is(err, expensedomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, customerdomain.ErrDuplicateEmail),
		errors.Is(err, authdomain.ErrDuplicateEmail),
		errors.Is(err, invoicedomain.ErrDuplicateNumber),
		errors.Is(err, invoicedomain.ErrInvalidTransition),
		errors.Is(err, invoicedomain.ErrNotEditable),
		errors.Is(err, invoicedomain.ErrLastItem),
		errors.Is(err, invoicedomain.ErrAmountMismatch),
		errors.Is(err, customerdomain.ErrHasInvoices),
		errors.Is(err, paymentdomain.ErrInvalidTransition),
		errors.Is(err, paymentdomain.ErrAlreadyDecided),
		errors.Is(err, paymentdomain.ErrInvoiceNotPayable):
		return http.StatusConflict
	case isValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	validation := []error{
		authdomain.ErrInvalidEmail,
		authdomain.ErrInvalidName,
		authdomain.ErrWeakPassword,
		customerdomain.ErrInvalidName,
		customerdomain.ErrInvalidEmail,
		customerdomain.ErrInvalidCurrency,
		customerdomain.ErrInvalidID,
		invoicedomain.ErrInvalidID,
		invoicedomain.ErrInvalidCustomer,
		invoicedomain.ErrInvalidNumber,
		invoicedomain.ErrInvalidCurrency,
		invoicedomain.ErrInvalidDraft,
		invoicedomain.ErrInvalidStatus,
		invoicedomain.ErrNegativeQuantity,
		invoicedomain.ErrNegativeUnitPrice,
		invoicedomain.ErrPercentOutOfRange,
		paymentdomain.ErrInvalidID,
		paymentdomain.ErrInvalidInvoice,
		paymentdomain.ErrInvalidAmount,
		paymentdomain.ErrInvalidMethod,
		paymentdomain.ErrInvalidStatus,
		expensedomain.ErrInvalidID,
		expensedomain.ErrInvalidCategory,
		expensedomain.ErrInvalidDescription,
		expensedomain.ErrInvalidAmount,
		expensedomain.ErrInvalidCurrency,
		reportdomain.ErrInvalidRange,
		pagination.ErrInvalidPageToken,
	}
	for _, target := range validation {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func messageForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "request failed validation"
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "operation not allowed"
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusConflict:
		return "request conflicts with current state"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return "internal server error"
	}
}

// parseOptionalTime accepts RFC 3339 timestamps or plain dates. Plain
// dates used as an exclusive upper bound roll forward one day so the
// named day is included.
func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		utc := parsed.UTC()
		return &utc, nil
	}

	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	utc := parsed.UTC()
	if endOfDay {
		utc = utc.AddDate(0, 0, 1)
	}
	return &utc, nil
}
