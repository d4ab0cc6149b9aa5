package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "omnipos_sales"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	SalesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_created_total",
		Help:      "Committed sales by payment method.",
	}, []string{"payment_method"})

	SalesRefunded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_refunded_total",
		Help:      "Committed refunds.",
	})

	SaleRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sale_transaction_retries_total",
		Help:      "Sale transactions retried after a conflict.",
	})

	SyncOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_outcomes_total",
		Help:      "Reconciliation outcomes by status.",
	}, []string{"status"})

	InventoryAdjustments = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_adjustments_total",
		Help:      "Manual stock adjustments.",
	})
)
