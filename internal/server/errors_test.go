package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/faktura/internal/payment/domain"
)

func abortStatus(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	AbortWithError(c, err)

	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return recorder.Code, body
}

func TestAbortWithErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"not found", invoicedomain.ErrNotFound, http.StatusNotFound},
		{"receipt missing", paymentdomain.ErrNoReceipt, http.StatusNotFound},
		{"duplicate email", customerdomain.ErrDuplicateEmail, http.StatusConflict},
		{"not editable", invoicedomain.ErrNotEditable, http.StatusConflict},
		{"already decided", paymentdomain.ErrAlreadyDecided, http.StatusConflict},
		{"invoice not payable", paymentdomain.ErrInvoiceNotPayable, http.StatusConflict},
		{"amount mismatch", invoicedomain.ErrAmountMismatch, http.StatusConflict},
		{"bad percent", invoicedomain.ErrPercentOutOfRange, http.StatusBadRequest},
		{"rate limited", ErrTooManyRequests, http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := abortStatus(t, tc.err)
			if status != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, status)
			}
		})
	}
}

func TestAbortWithErrorHidesInternalDetails(t *testing.T) {
	status, body := abortStatus(t, errors.New("pq: connection refused"))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	errBody, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("missing error envelope: %v", body)
	}
	if errBody["code"] != "internal_error" {
		t.Fatalf("expected opaque code, got %v", errBody["code"])
	}
}

func TestAbortWithErrorValidationFields(t *testing.T) {
	err := &invoicedomain.ValidationError{Fields: []invoicedomain.FieldError{
		{Field: "items[1].quantity", Code: "not_positive", Message: "quantity must be greater than zero"},
	}}
	status, body := abortStatus(t, err)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	errBody := body["error"].(map[string]any)
	fields, ok := errBody["fields"].([]any)
	if !ok || len(fields) != 1 {
		t.Fatalf("expected one field error, got %v", errBody)
	}
	field := fields[0].(map[string]any)
	if field["field"] != "items[1].quantity" || field["code"] != "not_positive" {
		t.Fatalf("unexpected field error: %v", field)
	}
}

func TestParseOptionalTime(t *testing.T) {
	if got, err := parseOptionalTime("", false); err != nil || got != nil {
		t.Fatalf("expected nil for empty value, got %v %v", got, err)
	}

	got, err := parseOptionalTime("2025-06-01T10:30:00Z", false)
	if err != nil {
		t.Fatalf("parse rfc3339: %v", err)
	}
	if !got.Equal(time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}

	from, err := parseOptionalTime("2025-06-01", false)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !from.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected lower bound: %v", from)
	}

	to, err := parseOptionalTime("2025-06-01", true)
	if err != nil {
		t.Fatalf("parse date upper: %v", err)
	}
	if !to.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected next day for upper bound, got %v", to)
	}

	if _, err := parseOptionalTime("06/01/2025", false); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
