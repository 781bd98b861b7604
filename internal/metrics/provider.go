package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(ProviderRequests, ProviderBreakerState)
}

var (
	// op: token|create_order|get_order|capture_order, outcome: ok|http_error|transport_error|breaker_open
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_provider_requests_total",
			Help: "Calls to the payment provider API by operation and outcome.",
		},
		[]string{"provider", "op", "outcome"},
	)

	// 0 closed, 1 half-open, 2 open
	ProviderBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "payment_provider_breaker_state",
			Help: "Circuit breaker state for the payment provider (0 closed, 1 half-open, 2 open).",
		},
		[]string{"provider"},
	)
)
