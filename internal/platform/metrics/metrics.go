package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the integration layer.
type Metrics struct {
	// Outbound bank API calls by endpoint and status code
	BankRequests *prometheus.CounterVec

	// Outbound bank API latency by endpoint
	BankLatency *prometheus.HistogramVec

	// Token refreshes against the bank auth endpoint by result
	TokenRefreshes *prometheus.CounterVec

	// Audit entries written by module and action
	AuditEntries *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		BankRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "banklink_bank_requests_total",
			Help: "Total outbound bank API requests by endpoint and status code",
		}, []string{"endpoint", "status"}),

		BankLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "banklink_bank_request_duration_seconds",
			Help:    "Duration of outbound bank API requests by endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		TokenRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "banklink_token_refreshes_total",
			Help: "Total token refreshes against the bank auth endpoint by result",
		}, []string{"result"}), // result: "ok", "error"

		AuditEntries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "banklink_audit_entries_total",
			Help: "Total audit entries written by module and action",
		}, []string{"module", "action"}),
	}
}

// ObserveBankRequest records one outbound bank call.
func (m *Metrics) ObserveBankRequest(endpoint, status string, d time.Duration) {
	if m != nil {
		m.BankRequests.WithLabelValues(endpoint, status).Inc()
		m.BankLatency.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

// IncrementTokenRefresh records a token refresh attempt.
func (m *Metrics) IncrementTokenRefresh(result string) {
	if m != nil {
		m.TokenRefreshes.WithLabelValues(result).Inc()
	}
}

// IncrementAuditEntry records a persisted audit entry.
func (m *Metrics) IncrementAuditEntry(module, action string) {
	if m != nil {
		m.AuditEntries.WithLabelValues(module, action).Inc()
	}
}
