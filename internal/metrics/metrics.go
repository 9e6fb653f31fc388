// Package metrics exports classification metrics in Prometheus format.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the metrics of one engine instance on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	classifications   *prometheus.CounterVec
	failures          *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	reasoningRetries  prometheus.Counter
	reasoningInFlight prometheus.Gauge
	batchItems        *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors attached.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		classifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tiermap_classifications_total",
			Help: "Completed classifications by method (vector_only, hybrid, degraded)",
		}, []string{"method"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tiermap_failures_total",
			Help: "Classifications that returned an error, by failing stage",
		}, []string{"stage"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tiermap_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10, 30},
		}, []string{"stage"}),
		reasoningRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "tiermap_reasoning_retries_total",
			Help: "Strict re-asks after an invalid reasoning reply",
		}),
		reasoningInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "tiermap_reasoning_inflight",
			Help: "Reasoning calls currently holding the concurrency gate",
		}),
		batchItems: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tiermap_batch_items_total",
			Help: "Batch items written, by outcome (ok, error)",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry for a /metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Classified counts a successful classification.
func (r *Recorder) Classified(method string) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(method).Inc()
}

// Failed counts a classification error at stage.
func (r *Recorder) Failed(stage string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(stage).Inc()
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ReasoningRetried counts a strict retry.
func (r *Recorder) ReasoningRetried() {
	if r == nil {
		return
	}
	r.reasoningRetries.Inc()
}

// ReasoningStarted and ReasoningDone bracket a gated reasoning call.
func (r *Recorder) ReasoningStarted() {
	if r == nil {
		return
	}
	r.reasoningInFlight.Inc()
}

func (r *Recorder) ReasoningDone() {
	if r == nil {
		return
	}
	r.reasoningInFlight.Dec()
}

// BatchItem counts one written batch envelope.
func (r *Recorder) BatchItem(ok bool) {
	if r == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	r.batchItems.WithLabelValues(outcome).Inc()
}
