// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreated counts orders successfully created at checkout.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Total number of orders created",
	})

	// CheckoutFailures counts failed checkouts by reason.
	CheckoutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failures_total",
		Help: "Total number of failed checkout attempts",
	}, []string{"reason"})

	// InventoryConflicts counts add-to-cart and checkout attempts rejected
	// because the requested quantity exceeded stock.
	InventoryConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_inventory_conflicts_total",
		Help: "Total number of requests rejected for insufficient inventory",
	})

	// RequestDuration observes HTTP request latency by route and status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
