// Package metrics declares the Prometheus collectors of the library API.
// Everything is registered with the default registry at package init and
// served by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// ── HTTP ─────────────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served requests.
// Labels: method, route (gin full path or "unmatched"), status code.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests served.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests from routing to response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Records ──────────────────────────────────────────────────────────────────

// RecordsWrittenTotal counts committed writes.
// Labels:
//   - entity: user, book, book_copy, borrow, company
//   - operation: create, update, delete
var RecordsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_written_total",
		Help:      "Total number of committed record writes, by entity and operation.",
	},
	[]string{"entity", "operation"},
)

// DBErrorsTotal counts database failures surfaced to callers.
// Label kind: constraint or internal.
var DBErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "db_errors_total",
		Help:      "Total number of database errors returned to callers.",
	},
	[]string{"kind"},
)
