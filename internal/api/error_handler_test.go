package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/api/handler"
	"github.com/aimatch/portal/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      int
		redirect  bool
		retryable bool
		field     string
	}{
		{"validation", &domain.ValidationError{Fields: map[string]string{"credit_code": "credit_code is required"}}, http.StatusUnprocessableEntity, false, false, "credit_code"},
		{"below threshold", domain.ErrCompletenessBelowThreshold, http.StatusConflict, false, false, ""},
		{"in flight", fmt.Errorf("submit w1: %w", domain.ErrSubmissionInFlight), http.StatusConflict, false, false, ""},
		{"illegal transition", domain.ErrIllegalTransition, http.StatusConflict, false, false, ""},
		{"remote 401", fmt.Errorf("marketplace get_enterprise: %w", domain.ErrUnauthorized), http.StatusUnauthorized, true, false, ""},
		{"bad login", domain.ErrInvalidCredentials, http.StatusUnauthorized, true, false, ""},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, false, false, ""},
		{"no wizard", domain.ErrNoWizardForRole, http.StatusForbidden, false, false, ""},
		{"wizard not found", domain.ErrWizardNotFound, http.StatusNotFound, false, false, ""},
		{"marketplace error", &domain.APIError{Status: 500, Message: "database down"}, http.StatusBadGateway, false, true, ""},
		{"marketplace unreachable", fmt.Errorf("marketplace login: %w: %w", domain.ErrMarketplaceUnavailable, errors.New("dial tcp")), http.StatusBadGateway, false, true, ""},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, false, true, ""},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, false, false, ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, false, false, ""},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/wizards/w1/submit", nil), rec)

			h(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body handler.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("missing error message")
			}
			if (body.Redirect == "/login") != tt.redirect {
				t.Fatalf("redirect = %q", body.Redirect)
			}
			if body.Retryable != tt.retryable {
				t.Fatalf("retryable = %v", body.Retryable)
			}
			if tt.field != "" && body.Fields[tt.field] == "" {
				t.Fatalf("missing field %s in %v", tt.field, body.Fields)
			}
		})
	}
}

func TestHTTPErrorHandler_MarketplaceFallbackMessage(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(&domain.APIError{Status: 503}, c)

	var body handler.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != marketplaceFailure {
		t.Fatalf("expected generic message, got %q", body.Error)
	}
}
