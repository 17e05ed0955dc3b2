package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for admission control.
type Metrics struct {
	Admitted *prometheus.CounterVec
	Rejected *prometheus.CounterVec
}

// New creates a new Metrics instance with all rate limit metrics registered.
func New() *Metrics {
	return &Metrics{
		Admitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_ratelimit_admitted_total",
			Help: "Operations admitted by the rate limiter",
		}, []string{"operation"}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_ratelimit_rejected_total",
			Help: "Operations rejected by the rate limiter",
		}, []string{"operation"}),
	}
}

// IncrementAdmitted records an admitted operation.
func (m *Metrics) IncrementAdmitted(operation string) {
	m.Admitted.WithLabelValues(operation).Inc()
}

// IncrementRejected records a rejected operation.
func (m *Metrics) IncrementRejected(operation string) {
	m.Rejected.WithLabelValues(operation).Inc()
}
