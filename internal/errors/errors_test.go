package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetServiceError_Wrapped(t *testing.T) {
	cause := errors.New("connection refused")
	se := DataFetchFailed("Failed to fetch invoices.", cause)
	wrapped := fmt.Errorf("handler: %w", se)

	got := GetServiceError(wrapped)
	if got == nil {
		t.Fatal("GetServiceError() = nil")
	}
	if got.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want 500", got.HTTPStatus)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("cause should remain reachable through Unwrap")
	}
}

func TestGetServiceError_Plain(t *testing.T) {
	if GetServiceError(errors.New("plain")) != nil {
		t.Error("GetServiceError() should be nil for plain errors")
	}
}

func TestValidationFailed_Details(t *testing.T) {
	se := ValidationFailed("Missing Fields. Failed to Create Invoice.", map[string][]string{
		"amount": {"Please enter an amount greater than $0."},
	})
	if se.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("HTTPStatus = %d, want 422", se.HTTPStatus)
	}
	if _, ok := se.Details["errors"]; !ok {
		t.Error("Details[errors] missing")
	}
}

func TestRateLimitExceeded_Details(t *testing.T) {
	se := RateLimitExceeded(5, "1s")
	if se.Details["limit"] != 5 || se.Details["window"] != "1s" {
		t.Errorf("Details = %v", se.Details)
	}
}
