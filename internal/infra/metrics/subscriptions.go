package metrics

import (
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsRenewedTotal,
		subscriptionsTotal,
		subscriptionsDue,
	)
}

var (
	subscriptionsRenewedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_renewed_total",
			Help: "Total number of subscriptions advanced by a successful payment.",
		},
	)

	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by status.",
		},
		[]string{"status"}, // 'trialing', 'active', 'canceled'
	)

	subscriptionsDue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriptions_due_for_billing",
			Help: "Active subscriptions whose next billing date has passed.",
		},
	)
)

func IncSubscriptionsRenewed() {
	subscriptionsRenewedTotal.Inc()
}

// SetSubscriptionsTotal sets every known status, zero when absent from counts.
func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	statuses := []model.SubscriptionStatus{
		model.SubscriptionStatusTrialing,
		model.SubscriptionStatusActive,
		model.SubscriptionStatusCanceled,
	}
	for _, status := range statuses {
		subscriptionsTotal.WithLabelValues(norm(string(status))).Set(float64(counts[status]))
	}
}

func SetSubscriptionsDue(n int) {
	subscriptionsDue.Set(float64(n))
}
