// Package metrics records pipeline measurements in a private Prometheus
// registry. A batch run dumps the registry in the text exposition format
// for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

const namespace = "vepctl"

// Recorder implements driven.MetricsRecorder with Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	records   *prometheus.CounterVec
	errors    *prometheus.CounterVec
	merges    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records processed, by outcome.",
		}, []string{"valid"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_errors_total",
			Help:      "Validation errors, by stage and error type.",
		}, []string{"stage", "type"}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_merged_total",
			Help:      "Entities written to the pool, by kind and whether they were new.",
		}, []string{"kind", "created"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Time one record spent in a phase.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"phase"}),
	}
	r.registry.MustRegister(r.records, r.errors, r.merges, r.durations)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordOutcome counts one record as valid or invalid.
func (r *Recorder) RecordOutcome(valid bool) {
	r.records.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

// RecordError counts one validation error.
func (r *Recorder) RecordError(stage, errType string) {
	r.errors.WithLabelValues(stage, errType).Inc()
}

// RecordMerge counts one merged entity.
func (r *Recorder) RecordMerge(kind string, created bool) {
	r.merges.WithLabelValues(kind, strconv.FormatBool(created)).Inc()
}

// ObserveDuration records time spent in a phase.
func (r *Recorder) ObserveDuration(phase string, d time.Duration) {
	r.durations.WithLabelValues(phase).Observe(d.Seconds())
}

// WriteText writes every metric in the text exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextfile atomically writes the metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
