package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the DID lifecycle.
type Metrics struct {
	Created         *prometheus.CounterVec
	CreateFailed    *prometheus.CounterVec
	Deactivated     prometheus.Counter
	Resolutions     *prometheus.CounterVec
	SignOperations  prometheus.Counter
	CreateDuration  prometheus.Histogram
	RetriedCreates  prometheus.Counter
}

// New creates a new Metrics instance with all DID metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_did_created_total",
			Help: "DIDs created, by method",
		}, []string{"method"}),
		CreateFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_did_create_failed_total",
			Help: "DID creation failures, by reason",
		}, []string{"reason"}),
		Deactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attest_did_deactivated_total",
			Help: "DIDs deactivated",
		}),
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_did_resolutions_total",
			Help: "DID resolution attempts, by outcome",
		}, []string{"outcome"}),
		SignOperations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attest_did_sign_operations_total",
			Help: "Signing operations performed",
		}),
		CreateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attest_did_create_duration_seconds",
			Help:    "DID creation latency including key generation",
			Buckets: prometheus.DefBuckets,
		}),
		RetriedCreates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attest_did_create_retries_total",
			Help: "Creation attempts retried after an identifier collision",
		}),
	}
}
