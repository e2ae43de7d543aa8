package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeParse      = "parse"
	OutcomeRender     = "render"
	OutcomeStore      = "store"
)

// Metrics bundles the service collectors and the rolling render window.
type Metrics struct {
	reg *prometheus.Registry

	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     prometheus.Histogram
	captions *prometheus.CounterVec
	cleaned  prometheus.Counter

	Window *RenderWindow
}

// New registers collectors on a fresh registry. window bounds the render
// stats served by the stats endpoint.
func New(window time.Duration) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_renders_total",
			Help: "Render requests by input source and outcome",
		}, []string{"source", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reportgen_render_duration_seconds",
			Help:    "Time from request decode to stored artifact",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		size: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "reportgen_artifact_bytes",
			Help:    "Size of generated documents",
			Buckets: prometheus.ExponentialBuckets(8<<10, 2, 12),
		}),
		captions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_captions_total",
			Help: "Numbered captions emitted, by kind",
		}, []string{"kind"}),
		cleaned: f.NewCounter(prometheus.CounterOpts{
			Name: "reportgen_artifacts_cleaned_total",
			Help: "Artifacts removed by age-based cleanup",
		}),
		Window: NewRenderWindow(window, DefaultWindowCapacity),
	}
}

// ObserveRender records one finished render attempt.
func (m *Metrics) ObserveRender(source, outcome string, d time.Duration) {
	m.renders.WithLabelValues(source, outcome).Inc()
	m.Window.Add(source, outcome, d)
	if outcome == OutcomeOK {
		m.duration.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveArtifact records the size and caption counts of a stored document.
func (m *Metrics) ObserveArtifact(bytes int, tables, figures, charts int) {
	m.size.Observe(float64(bytes))
	m.captions.WithLabelValues("table").Add(float64(tables))
	m.captions.WithLabelValues("figure").Add(float64(figures))
	m.captions.WithLabelValues("chart").Add(float64(charts))
}

// ObserveCleanup adds n removed artifacts.
func (m *Metrics) ObserveCleanup(n int) {
	m.cleaned.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }
