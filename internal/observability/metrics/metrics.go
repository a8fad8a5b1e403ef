// Package metrics exposes Prometheus instruments for the message pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "clinic"
	subsystem = "assistant"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	inboundTotal      *prometheus.CounterVec
	guardDrops        *prometheus.CounterVec
	routesTotal       *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
	dependencyErrors  *prometheus.CounterVec
	outboundTotal     *prometheus.CounterVec
	processingLatency *prometheus.HistogramVec
}

// New registers the instruments on reg (the default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "inbound_messages_total",
			Help:      "Inbound WhatsApp messages by kind and outcome",
		}, []string{"kind", "outcome"}),
		guardDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "guard_drops_total",
			Help:      "Messages dropped by the spam and rate guard",
		}, []string{"reason"}),
		routesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "routes_total",
			Help:      "Dispatcher routing decisions",
		}, []string{"route"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bookings_total",
			Help:      "Bookings created and canceled through the chat",
		}, []string{"event"}),
		dependencyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dependency_errors_total",
			Help:      "Failures of external dependencies",
		}, []string{"dependency"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbound_messages_total",
			Help:      "Outbound WhatsApp sends by content kind and status",
		}, []string{"kind", "status"}),
		processingLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "processing_seconds",
			Help:      "Time to process one inbound message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.guardDrops, m.routesTotal, m.bookingsTotal,
		m.dependencyErrors, m.outboundTotal, m.processingLatency)
	return m
}

func (m *Metrics) ObserveInbound(kind, outcome string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveGuardDrop(reason string) {
	if m == nil {
		return
	}
	m.guardDrops.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveRoute(route string) {
	if m == nil {
		return
	}
	m.routesTotal.WithLabelValues(route).Inc()
}

func (m *Metrics) ObserveBooking(event string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveDependencyError(dependency string) {
	if m == nil {
		return
	}
	m.dependencyErrors.WithLabelValues(dependency).Inc()
}

func (m *Metrics) ObserveOutbound(kind, status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) ObserveProcessing(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.processingLatency.WithLabelValues(kind).Observe(seconds)
}
