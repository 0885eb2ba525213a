package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects the engine's operational counters. Collectors work
// unregistered, so New(nil) yields a fully usable no-op-ish instance for
// tests and embedders that do not scrape.
type Metrics struct {
	Connected         prometheus.Gauge
	ReconnectAttempts prometheus.Counter
	EventsDelivered   *prometheus.CounterVec
	EventsDropped     prometheus.Counter
	RouteComputations prometheus.Counter
	RouteFallbacks    prometheus.Counter
	Refetches         prometheus.Counter
}

// New builds the collector set and registers it when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gharsewa",
			Name:      "socket_connected",
			Help:      "1 while the realtime socket is connected.",
		}),
		ReconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gharsewa",
			Name:      "socket_reconnect_attempts_total",
			Help:      "Reconnect attempts scheduled after unexpected disconnects.",
		}),
		EventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gharsewa",
			Name:      "events_delivered_total",
			Help:      "Inbound events delivered to at least one subscriber.",
		}, []string{"channel"}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gharsewa",
			Name:      "events_dropped_total",
			Help:      "Inbound events dropped for failing payload validation.",
		}),
		RouteComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gharsewa",
			Name:      "route_computations_total",
			Help:      "Route recomputations performed by the map engine.",
		}),
		RouteFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gharsewa",
			Name:      "route_fallbacks_total",
			Help:      "Route computations that degraded to a straight line.",
		}),
		Refetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gharsewa",
			Name:      "booking_refetches_total",
			Help:      "Authoritative booking refetches (debounced and polled).",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Connected,
			m.ReconnectAttempts,
			m.EventsDelivered,
			m.EventsDropped,
			m.RouteComputations,
			m.RouteFallbacks,
			m.Refetches,
		)
	}
	return m
}
