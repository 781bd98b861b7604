package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		CheckoutRequests,
		CheckoutDuration,
		PaymentVerifyRequests,
		PaymentVerifyDuration,
		SubscriptionTransitions,
	)
}

var (
	// result: ok|fail, reason is a bounded label from service.Reason
	CheckoutRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_requests_total",
			Help: "Count of /api/checkout calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	CheckoutDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of /api/checkout handler in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"result"},
	)

	// result: completed|not_completed|fail
	PaymentVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Count of /api/verify-payment calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	PaymentVerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of /api/verify-payment handler in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"result"},
	)

	// to: pending|active
	SubscriptionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_transitions_total",
			Help: "Subscription rows written by the checkout workflow, by resulting status.",
		},
		[]string{"to"},
	)
)
