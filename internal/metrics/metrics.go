package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prestiges"

// Registry is the process-wide Prometheus registry.
var Registry = prometheus.NewRegistry()

// MessagesPublished counts broker publishes by exchange and routing key.
var MessagesPublished = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_published_total",
		Help:      "Total number of messages published to the broker",
	},
	[]string{"exchange", "routing_key"},
)

// MessagesConsumed counts consumed messages by queue and outcome
// (ok, retried, dead_lettered).
var MessagesConsumed = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_consumed_total",
		Help:      "Total number of messages consumed from the broker",
	},
	[]string{"queue", "outcome"},
)

// OutboxRelayed counts outbox rows drained to the broker.
var OutboxRelayed = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_relayed_total",
		Help:      "Total number of outbox messages relayed to the broker",
	},
)

// ContestsClosed counts closures performed by the lifecycle controller.
var ContestsClosed = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contests_closed_total",
		Help:      "Total number of contests closed, by trigger (sweep, update)",
	},
	[]string{"trigger"},
)

// HTTPRequestsTotal counts HTTP requests by method, path pattern and status.
var HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	},
	[]string{"method", "path", "status"},
)

// Handler serves the registry on /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
