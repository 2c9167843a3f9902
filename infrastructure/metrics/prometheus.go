// Package metrics records registry and planner activity as Prometheus
// metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// recorderConfig holds configuration for the Recorder.
type recorderConfig struct {
	namespace string
	buckets   []float64
}

func defaultRecorderConfig() recorderConfig {
	return recorderConfig{
		namespace: "facet",
		buckets:   prometheus.DefBuckets,
	}
}

// Option configures a Recorder.
type Option func(*recorderConfig)

// WithNamespace sets the metric name prefix (default "facet").
func WithNamespace(ns string) Option {
	return func(c *recorderConfig) {
		c.namespace = ns
	}
}

// WithBuckets sets the histogram buckets of the apply duration.
func WithBuckets(buckets []float64) Option {
	return func(c *recorderConfig) {
		if len(buckets) > 0 {
			c.buckets = buckets
		}
	}
}

// Recorder implements ports.MetricsRecorder on a private Prometheus
// registry.
type Recorder struct {
	registry *prometheus.Registry

	batchesApplied  prometheus.Counter
	batchesRejected *prometheus.CounterVec
	cutsApplied     prometheus.Counter
	applyDuration   prometheus.Histogram
	plannedCuts     *prometheus.GaugeVec
	conflicts       prometheus.Counter
}

var _ ports.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates a Recorder with its metrics registered.
func NewRecorder(opts ...Option) *Recorder {
	cfg := defaultRecorderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	ns := cfg.namespace

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		batchesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "batches_applied_total",
			Help:      "Number of cut batches committed to the registry.",
		}),
		batchesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "batches_rejected_total",
			Help:      "Number of cut batches rejected, by error code.",
		}, []string{"code"}),
		cutsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cuts_applied_total",
			Help:      "Number of cuts committed to the registry.",
		}),
		applyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "apply_duration_seconds",
			Help:      "Time taken to validate and commit a batch.",
			Buckets:   cfg.buckets,
		}),
		plannedCuts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "planned_cuts",
			Help:      "Number of cuts produced by the last run of each diff kind.",
		}, []string{"kind"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "conflicts_total",
			Help:      "Number of capabilities observed claimed by several cuts.",
		}),
	}

	r.registry.MustRegister(
		r.batchesApplied,
		r.batchesRejected,
		r.cutsApplied,
		r.applyDuration,
		r.plannedCuts,
		r.conflicts,
	)
	return r
}

// BatchApplied implements ports.MetricsRecorder.
func (r *Recorder) BatchApplied(cuts int, took time.Duration) {
	r.batchesApplied.Inc()
	r.cutsApplied.Add(float64(cuts))
	r.applyDuration.Observe(took.Seconds())
}

// BatchRejected implements ports.MetricsRecorder.
func (r *Recorder) BatchRejected(code string) {
	if code == "" {
		code = "unknown"
	}
	r.batchesRejected.WithLabelValues(code).Inc()
}

// KindPlanned implements ports.MetricsRecorder.
func (r *Recorder) KindPlanned(kind entities.Kind, cuts int) {
	r.plannedCuts.WithLabelValues(string(kind)).Set(float64(cuts))
}

// ConflictsObserved implements ports.MetricsRecorder.
func (r *Recorder) ConflictsObserved(n int) {
	r.conflicts.Add(float64(n))
}

// Gatherer exposes the private registry, e.g. for promhttp.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every metric to path in the text exposition format
// read by the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
