package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TransactionsInitialized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_transactions_initialized_total",
			Help: "Number of transaction initialize calls by outcome",
		},
		[]string{"outcome"},
	)

	TransactionsVerified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_transactions_verified_total",
			Help: "Number of transaction verify calls by order status",
		},
		[]string{"status"},
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_provider_request_seconds",
			Help:    "Time taken by payment provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	AmountMismatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_amount_mismatches_total",
			Help: "Verified transactions whose amount differs from the catalog price of the cart",
		},
	)

	OutboxPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_outbox_events_published_total",
			Help: "Number of order events published to Kafka",
		},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		TransactionsInitialized,
		TransactionsVerified,
		ProviderLatency,
		AmountMismatches,
		OutboxPublished,
	)
}
