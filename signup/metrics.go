package signup

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts signup submissions by outcome.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	BillingDuration  prometheus.Histogram
	ReconcileFailure prometheus.Counter
}

// Submission outcomes.
const (
	outcomeNoop       = "noop"
	outcomeSecurity   = "security_fail"
	outcomeInvalid    = "invalid"
	outcomeBilling    = "billing_error"
	outcomeUser       = "user_error"
	outcomeSubscribed = "subscribed"
)

// NewMetrics creates the signup metrics and registers them with reg, if
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wpchargify_signup_submissions_total",
				Help: "Signup form submissions by outcome",
			},
			[]string{"outcome"},
		),
		BillingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wpchargify_signup_billing_duration_seconds",
				Help:    "Time spent creating subscriptions in Chargify",
				Buckets: prometheus.DefBuckets,
			},
		),
		ReconcileFailure: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wpchargify_signup_reconcile_failures_total",
				Help: "Subscriptions created whose local account could not be synced",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Submissions, m.BillingDuration, m.ReconcileFailure)
	}
	return m
}

func (m *Metrics) outcome(name string) {
	if m != nil {
		m.Submissions.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) billing(start time.Time) {
	if m != nil {
		m.BillingDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) reconcileFailed() {
	if m != nil {
		m.ReconcileFailure.Inc()
	}
}
