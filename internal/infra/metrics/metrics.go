// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(gatewayChargeDuration) }

var gatewayChargeDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "gateway_charge_duration_seconds",
		Help:    "Latency of payment gateway charge calls in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
	},
	[]string{"provider", "result"}, // result: ok|declined|error
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Gateway helpers --------

func ObserveGatewayCharge(provider, result string, d time.Duration) {
	gatewayChargeDuration.WithLabelValues(norm(provider), norm(result)).Observe(d.Seconds())
}
