package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestServerHealth(t *testing.T) {
	srv := NewServer("", func(context.Context) HealthStatus {
		return HealthStatus{Status: "degraded", Components: map[string]string{"cache": "closed"}}
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Components["cache"] != "closed" {
		t.Errorf("unexpected components: %v", status.Components)
	}
}

func TestServerMetrics(t *testing.T) {
	UnitsTotal.WithLabelValues(OutcomeGenerated).Inc()

	rec := httptest.NewRecorder()
	NewServer("", nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `genstub_units_total{outcome="generated"}`) {
		t.Error("expected units counter in metrics output")
	}
}
