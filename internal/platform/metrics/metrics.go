// Package metrics exposes Prometheus counters for the billing and
// reconciliation flows plus the /metrics scrape endpoint.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors the services report into.
type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated    *prometheus.CounterVec
	Allocations      *prometheus.CounterVec
	AllocationAmount *prometheus.CounterVec
	LedgerEntries    prometheus.Counter
}

// New builds a Metrics with its own registry, keeping tests isolated from
// the global default registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dcms_orders_created_total",
			Help: "Orders created, by order kind.",
		}, []string{"kind"}),
		Allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dcms_allocations_total",
			Help: "Accepted payment allocations, by payee kind.",
		}, []string{"payee_kind"}),
		AllocationAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dcms_allocation_applied_amount",
			Help: "Total payment amount applied to orders, by payee kind.",
		}, []string{"payee_kind"}),
		LedgerEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dcms_ledger_entries_total",
			Help: "Ledger entries appended.",
		}),
	}

	reg.MustRegister(m.OrdersCreated, m.Allocations, m.AllocationAmount, m.LedgerEntries)
	return m
}

// Handler returns the echo handler serving the Prometheus text exposition.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
