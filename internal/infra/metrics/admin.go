package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		apiAuthTotal,
		paymentRequestsTotal,
		paymentRequestDuration,
	)
}

var (
	apiAuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_auth_total",
			Help: "Bearer token checks on the API.",
		},
		[]string{"status"}, // status: 'authorized', 'unauthorized'
	)

	// result: ok|fail, category: the payment error category, empty on success
	paymentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_requests_total",
			Help: "Count of POST /api/v1/payments calls by result and error category.",
		},
		[]string{"result", "category"},
	)

	paymentRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_request_duration_seconds",
			Help:    "Duration of the payment handler in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"result"},
	)
)

func IncAuth(status string) {
	apiAuthTotal.WithLabelValues(norm(status)).Inc()
}

func ObservePaymentRequest(result, category string, d time.Duration) {
	paymentRequestsTotal.WithLabelValues(norm(result), norm(category)).Inc()
	paymentRequestDuration.WithLabelValues(norm(result)).Observe(d.Seconds())
}
