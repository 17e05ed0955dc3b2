package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for credential issuance and verification.
type Metrics struct {
	Issued        *prometheus.CounterVec
	IssueFailed   *prometheus.CounterVec
	Revoked       prometheus.Counter
	Verifications *prometheus.CounterVec
}

// New creates a new Metrics instance with all credential metrics registered.
func New() *Metrics {
	return &Metrics{
		Issued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_credential_issued_total",
			Help: "Credentials issued, by credential type",
		}, []string{"type"}),
		IssueFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_credential_issue_failed_total",
			Help: "Credential issuance failures, by reason",
		}, []string{"reason"}),
		Revoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attest_credential_revoked_total",
			Help: "Credentials revoked",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_credential_verifications_total",
			Help: "Verification outcomes, by status",
		}, []string{"status"}),
	}
}
