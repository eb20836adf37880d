// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersPlacedTotal counts newly placed orders.
// Label:
//   - store: the store slug
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed, by store.",
	},
	[]string{"store"},
)

// OrderTransitionsTotal counts applied status transitions.
// Labels:
//   - from, to: order statuses (e.g. "confirmed" → "shipped")
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of order status transitions applied.",
	},
	[]string{"from", "to"},
)

// OrderTransitionRejectionsTotal counts rejected status changes.
// Label:
//   - reason: "invalid_transition", "tracking_required", "concurrent_update", "forbidden"
var OrderTransitionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transition_rejections_total",
		Help:      "Total number of rejected order status changes.",
	},
	[]string{"reason"},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// RoleResolutionsTotal counts identity classifications by resulting role.
var RoleResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_resolutions_total",
		Help:      "Total number of identity role resolutions, by role.",
	},
	[]string{"role"},
)

// IdentityLookupFailuresTotal counts store-ownership lookups that failed and
// were treated as "no managed store".
var IdentityLookupFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_lookup_failures_total",
		Help:      "Store ownership lookups that failed open to the customer role.",
	},
)

// ── Event dispatch metrics ────────────────────────────────────────────────────

// EventsPublishedTotal counts order events delivered to the bus.
// Label:
//   - type: event type (e.g. "order.placed")
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of order events published.",
	},
	[]string{"type"},
)

// EventsErrorsTotal counts order events that could not be published.
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of order events that failed to publish.",
	},
	[]string{"type"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventPublishDuration measures how long a single publish takes.
var EventPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_publish_duration_seconds",
		Help:      "Duration of order event publishing from dequeue to broker ack.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)

// ── Subscription metrics ──────────────────────────────────────────────────────

// ActiveSubscriptions tracks open realtime streams.
// Label:
//   - collection: "products" or "orders"
var ActiveSubscriptions = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_subscriptions",
		Help:      "Number of open realtime snapshot subscriptions.",
	},
	[]string{"collection"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures handled requests.
// Labels:
//   - method, route: the echo route pattern, not the raw path
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
