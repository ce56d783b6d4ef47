package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		h        *HealthDependenciesHandler
		wantCode int
		wantDep  string
	}{
		{"all healthy", NewHealthDependenciesHandler().WithCheck("marketplace", ok).WithCheck("redis", ok), http.StatusOK, ""},
		{"one down", NewHealthDependenciesHandler().WithCheck("marketplace", down).WithCheck("redis", ok), http.StatusServiceUnavailable, "marketplace"},
		{"no checks", NewHealthDependenciesHandler(), http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			if err := tt.h.Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if tt.wantDep != "" && resp.Dependencies[tt.wantDep].Status != "unhealthy" {
				t.Fatalf("expected %s unhealthy, got %+v", tt.wantDep, resp.Dependencies)
			}
		})
	}
}
