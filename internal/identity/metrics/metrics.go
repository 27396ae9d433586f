package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the identity feature's Prometheus metrics. Verification
// outcomes stay encrypted end to end, so there is deliberately no
// match/mismatch label here; only volume and failure classes are observable.
type Metrics struct {
	RegistrationsTotal    prometheus.Counter
	DuplicateRegistrations prometheus.Counter
	VerificationsTotal    prometheus.Counter
	VerificationsNotFound prometheus.Counter
}

// New creates and registers the identity metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cipherid_registrations_total",
			Help: "Total successful identity registrations.",
		}),
		DuplicateRegistrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cipherid_registrations_duplicate_total",
			Help: "Registration attempts rejected by the lookup-key uniqueness constraint.",
		}),
		VerificationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cipherid_verifications_total",
			Help: "Total verification requests that produced an encrypted result.",
		}),
		VerificationsNotFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cipherid_verifications_not_found_total",
			Help: "Verification requests against an unregistered lookup key.",
		}),
	}
}
