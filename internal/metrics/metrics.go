package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the realtime collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	activeConnections   prometheus.Gauge
	eventsReceived      *prometheus.CounterVec
	messagesSent        prometheus.Counter
	persistenceFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Active websocket connections",
		}),
		eventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ws_events_received_total",
			Help: "Client events received, by type",
		}, []string{"type"}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Messages persisted and routed",
		}),
		persistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_persistence_failures_total",
			Help: "sendMessage calls that failed to persist",
		}),
	}
	reg.MustRegister(m.activeConnections, m.eventsReceived, m.messagesSent, m.persistenceFailures)
	return m
}

func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.activeConnections.Inc()
	}
}

func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.activeConnections.Dec()
	}
}

// clientEvents bounds the type label; anything else a client sends is
// counted as "unknown".
var clientEvents = map[string]struct{}{
	"typing":           {},
	"sendMessage":      {},
	"manualDisconnect": {},
}

func (m *Metrics) EventReceived(eventType string) {
	if m == nil {
		return
	}
	if _, ok := clientEvents[eventType]; !ok {
		eventType = "unknown"
	}
	m.eventsReceived.WithLabelValues(eventType).Inc()
}

func (m *Metrics) MessageSent() {
	if m != nil {
		m.messagesSent.Inc()
	}
}

func (m *Metrics) PersistenceFailed() {
	if m != nil {
		m.persistenceFailures.Inc()
	}
}

// Handler exposes g for Prometheus scraping on a fiber route.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
