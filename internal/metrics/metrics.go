package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gympulse/gym-notify/backend/internal/dispatch"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	NotificationsProcessed *prometheus.CounterVec
	DispatchLatency        prometheus.Histogram
	TokensResolved         prometheus.Histogram
	RecordsSwept           prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_processed_total",
			Help: "Queue records driven to a terminal state, by outcome.",
		}, []string{"result"}),

		DispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notification_dispatch_seconds",
			Help:    "End-to-end processing latency from detection to terminal marking.",
			Buckets: prometheus.DefBuckets,
		}),

		TokensResolved: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notification_tokens_resolved",
			Help:    "Device tokens resolved per dispatched record.",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		}),

		RecordsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_records_swept_total",
			Help: "Old terminal queue records deleted by the retention sweeper.",
		}),
	}

	reg.MustRegister(
		m.NotificationsProcessed,
		m.DispatchLatency,
		m.TokensResolved,
		m.RecordsSwept,
	)
	return m
}

// ConsumerHooks returns the metric callbacks expected by dispatch.Hooks.
// Centralises the prometheus observation calls so the consumer stays
// import-free.
func (m *Metrics) ConsumerHooks() dispatch.Hooks {
	return dispatch.Hooks{
		OnProcessed: func(success bool, latency time.Duration) {
			result := "sent"
			if !success {
				result = "failed"
			}
			m.NotificationsProcessed.WithLabelValues(result).Inc()
			m.DispatchLatency.Observe(latency.Seconds())
		},
		OnTokens: func(count int) {
			m.TokensResolved.Observe(float64(count))
		},
	}
}

// SweeperHook returns the metric callback for the retention sweeper.
func (m *Metrics) SweeperHook() func(int64) {
	return func(count int64) {
		m.RecordsSwept.Add(float64(count))
	}
}
