// Package metrics records Prometheus metrics and OpenTelemetry spans for the
// server's dispatch path.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "winserv"

// Dispatch outcome labels.
const (
	StatusOK                = "ok"
	StatusNotFound          = "not_found"
	StatusInvalidArgument   = "invalid_argument"
	StatusProtocolViolation = "protocol_violation"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "winserv").
	Namespace string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// TracerName is the name of the tracer (default: "winserv").
	TracerName string

	// TracerProvider creates the tracer.
	// Default: the global provider
	TracerProvider trace.TracerProvider

	// Buckets are the histogram buckets for dispatch duration.
	Buckets []float64
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:  "winserv",
		Registry:   prometheus.DefaultRegisterer,
		TracerName: defaultTracerName,
		Buckets:    []float64{.00005, .0001, .0005, .001, .005, .01, .05, .1},
	}
}

// Metrics holds the server collectors and tracer.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	activeClients    prometheus.Gauge
	unresponsive     prometheus.Gauge
	resources        *prometheus.GaugeVec
	eventsSent       *prometheus.CounterVec
	eventsDropped    *prometheus.CounterVec
	framesTotal      prometheus.Counter
	disconnectsTotal *prometheus.CounterVec

	tracer trace.Tracer
}

// New registers the collectors. The tracer comes from the global
// OpenTelemetry provider; configure it with otel.SetTracerProvider before
// calling New.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}
	factory := promauto.With(config.Registry)
	ns := config.Namespace

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "requests_total",
			Help:      "Client requests dispatched, by op and outcome",
		}, []string{"op", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "request_duration_seconds",
			Help:      "Time spent in a request handler on the dispatch loop",
			Buckets:   config.Buckets,
		}, []string{"op"}),

		activeClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "clients",
			Help:      "Connected clients",
		}),

		unresponsive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "clients_unresponsive",
			Help:      "Connected clients that have not answered the last ping",
		}),

		resources: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "resources",
			Help:      "Live resources across all clients, by kind",
		}, []string{"kind"}),

		eventsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "events_sent_total",
			Help:      "Server events queued for clients, by op",
		}, []string{"op"}),

		eventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "events_dropped_total",
			Help:      "Server events dropped because a client's queue was full",
		}, []string{"op"}),

		framesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "frames_total",
			Help:      "Frames produced by the compositor",
		}),

		disconnectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "disconnects_total",
			Help:      "Client disconnects, by reason",
		}, []string{"reason"}),

		tracer: config.TracerProvider.Tracer(config.TracerName),
	}
}

// Span tracks one dispatched request.
type Span struct {
	m     *Metrics
	op    string
	start time.Time
	span  trace.Span
}

// StartRequest opens a span for op issued by clientID.
func (m *Metrics) StartRequest(ctx context.Context, clientID int, op string) (context.Context, *Span) {
	ctx, span := m.tracer.Start(ctx, "winserv."+op,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("winserv.op", op),
			attribute.Int("winserv.client_id", clientID),
		),
	)
	return ctx, &Span{m: m, op: op, start: time.Now(), span: span}
}

// End records the outcome. err is attached to the span when non-nil.
func (s *Span) End(status string, err error) {
	s.m.requestDuration.WithLabelValues(s.op).Observe(time.Since(s.start).Seconds())
	s.m.requestsTotal.WithLabelValues(s.op, status).Inc()

	s.span.SetAttributes(attribute.String("winserv.status", status))
	if err != nil {
		s.span.RecordError(err)
		if status == StatusProtocolViolation {
			s.span.SetStatus(codes.Error, err.Error())
		}
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

func (m *Metrics) ClientConnected() { m.activeClients.Inc() }

// ClientDisconnected records a disconnect; reason is a short label such as
// "eof" or "protocol_violation".
func (m *Metrics) ClientDisconnected(reason string) {
	m.activeClients.Dec()
	m.disconnectsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ClientUnresponsive()           { m.unresponsive.Inc() }
func (m *Metrics) ClientResponsive()             { m.unresponsive.Dec() }
func (m *Metrics) ResourceCreated(kind string)   { m.resources.WithLabelValues(kind).Inc() }
func (m *Metrics) ResourceDestroyed(kind string) { m.resources.WithLabelValues(kind).Dec() }
func (m *Metrics) EventSent(op string)           { m.eventsSent.WithLabelValues(op).Inc() }
func (m *Metrics) EventDropped(op string)        { m.eventsDropped.WithLabelValues(op).Inc() }
func (m *Metrics) FrameProduced()                { m.framesTotal.Inc() }
