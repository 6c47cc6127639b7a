package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embermud_events_published_total",
		Help: "Game events published to the topic exchange.",
	}, []string{"category"})

	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embermud_publish_failures_total",
		Help: "Publishes dropped because the broker was unavailable.",
	})

	EventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embermud_events_delivered_total",
		Help: "Events delivered to client handlers after local filtering.",
	}, []string{"category"})

	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embermud_events_dropped_total",
		Help: "Events dropped at the consumer, by reason.",
	}, []string{"reason"})

	SoundsPropagated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embermud_sounds_propagated_total",
		Help: "Derived sound notifications synthesized by the propagator.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "embermud_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "embermud_connected_clients",
		Help: "Websocket clients currently attached to the event core.",
	})
)

// Drop reasons for EventsDropped.
const (
	DropUnknownVariant  = "unknown_variant"
	DropMalformed       = "malformed"
	DropRecipientFilter = "recipient_filter"
	DropScopeFilter     = "scope_filter"
	DropHandlerError    = "handler_error"
)
