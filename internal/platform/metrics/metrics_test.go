package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestMetrics_Exposition(t *testing.T) {
	m := New()
	m.OrdersCreated.WithLabelValues("test-order").Inc()
	m.Allocations.WithLabelValues("doctor").Inc()
	m.AllocationAmount.WithLabelValues("doctor").Add(120)
	m.LedgerEntries.Inc()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := m.Handler()(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"dcms_orders_created_total",
		"dcms_allocations_total",
		"dcms_allocation_applied_amount",
		"dcms_ledger_entries_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %s", want)
		}
	}
}
