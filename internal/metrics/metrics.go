// Package metrics wires the matching engine's HTTP-facing counters into
// Prometheus, replacing a hand-rolled atomic counter set with
// promauto-registered collectors exposed on /metrics via promhttp.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the matching engine's HTTP
// surface.
type Metrics struct {
	OrdersReceived  prometheus.Counter
	OrdersCancelled prometheus.Counter
	OrdersModified  prometheus.Counter
	OrdersRejected  *prometheus.CounterVec
	TradesExecuted  prometheus.Counter
	OrdersResting   prometheus.Gauge
	SubmitLatency   prometheus.Histogram
}

// New registers and returns a fresh set of collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OrdersReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "ironbook_orders_received_total",
			Help: "Total number of orders submitted to the book.",
		}),
		OrdersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "ironbook_orders_cancelled_total",
			Help: "Total number of orders cancelled.",
		}),
		OrdersModified: factory.NewCounter(prometheus.CounterOpts{
			Name: "ironbook_orders_modified_total",
			Help: "Total number of successful order modifications.",
		}),
		OrdersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ironbook_orders_rejected_total",
			Help: "Total number of orders rejected, by error kind.",
		}, []string{"reason"}),
		TradesExecuted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ironbook_trades_executed_total",
			Help: "Total number of trades emitted by the matching loop.",
		}),
		OrdersResting: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ironbook_orders_resting",
			Help: "Current number of resting orders across both sides.",
		}),
		SubmitLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ironbook_submit_latency_seconds",
			Help:    "Submit() call latency.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
}

// ObserveSubmit records how long a Submit call took.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitLatency.Observe(time.Since(start).Seconds())
}
