package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はストアフロントの指標
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CartMutationsTotal      *prometheus.CounterVec
	CartPersistFailures     prometheus.Counter
	CartStorageCorruptTotal prometheus.Counter
	CartLines               prometheus.Gauge
	CartItems               prometheus.Gauge

	CatalogQueryDuration *prometheus.HistogramVec
}

// New は指標を作って reg に登録する。
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		CartMutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by operation",
		}, []string{"op"}),
		CartPersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "persist_failures_total",
			Help:      "Cart writes that failed to reach storage",
		}),
		CartStorageCorruptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "storage_corrupt_total",
			Help:      "Stored cart payloads discarded as corrupt",
		}),
		CartLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "lines",
			Help:      "Line items currently in the cart",
		}),
		CartItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "items",
			Help:      "Sum of quantities currently in the cart",
		}),

		CatalogQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "catalog",
			Name:      "query_duration_seconds",
			Help:      "Catalog query and search duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"kind"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.HTTPRequestsTotal,
			m.HTTPRequestDuration,
			m.CartMutationsTotal,
			m.CartPersistFailures,
			m.CartStorageCorruptTotal,
			m.CartLines,
			m.CartItems,
			m.CatalogQueryDuration,
		)
	}
	return m
}

// テスト用（どこにも登録しない）
func NewNop() *Metrics {
	return New(nil)
}
