package observability

import (
	"context"
	"net/http"

	"leadconnect_backend/internal/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "leadconnect"

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	PipelineRequests *prometheus.CounterVec
	Buttons          *prometheus.CounterVec
	BackendErrors    *prometheus.CounterVec
	BackendLatency   prometheus.Histogram
	LeadsCreated     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the instruments on a fresh registry so several
// instances can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return newMetrics(reg, reg)
}

func newMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PipelineRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pipeline_requests_total",
			Help:      "Inbound messages processed by channel and outcome.",
		}, []string{"channel", "outcome"}),
		Buttons: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "buttons_total",
			Help:      "Call-to-action buttons selected by label.",
		}, []string{"button"}),
		BackendErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_errors_total",
			Help:      "Generation backend failures by class.",
		}, []string{"kind"}),
		BackendLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "backend_latency_ms",
			Help:      "Generation backend latency in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		}),
		LeadsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "leads_created_total",
			Help:      "Leads created on first contact by channel.",
		}, []string{"channel"}),
		gatherer: gatherer,
	}
}

func (m *Metrics) ObserveBackendLatency(ms int64) {
	m.BackendLatency.Observe(float64(ms))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RegisterHandlers counts first-contact lead creations published on the bus.
func (m *Metrics) RegisterHandlers(bus events.Subscriber) {
	bus.Subscribe(events.NameLeadFirstContact, events.HandlerFunc(func(_ context.Context, event events.Event) error {
		if e, ok := event.(events.LeadFirstContact); ok {
			m.LeadsCreated.WithLabelValues(e.Channel).Inc()
		}
		return nil
	}))
}
