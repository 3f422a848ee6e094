// Package metrics records sweep progress in a private Prometheus registry
// that can be exported as a node_exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sweeper"

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Recorder holds the sweep metrics.
type Recorder struct {
	registry *prometheus.Registry

	Combinations       prometheus.Gauge
	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	AnnotationFailures prometheus.Counter
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Combinations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "combinations",
			Help:      "Number of parameter combinations in the sweep",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Benchmark runs by status",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a single benchmark run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		AnnotationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotation_failures_total",
			Help:      "Result tables that could not be annotated",
		}),
	}

	r.registry.MustRegister(
		r.Combinations,
		r.RunsTotal,
		r.RunDuration,
		r.AnnotationFailures,
	)

	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// SetCombinations records the sweep size.
func (r *Recorder) SetCombinations(n int) {
	r.Combinations.Set(float64(n))
}

// ObserveRun records one finished run.
func (r *Recorder) ObserveRun(d time.Duration, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}

	r.RunsTotal.WithLabelValues(status).Inc()
	r.RunDuration.Observe(d.Seconds())
}

// AnnotationFailed counts a failed annotation.
func (r *Recorder) AnnotationFailed() {
	r.AnnotationFailures.Inc()
}

// WriteTextfile writes all metrics in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
