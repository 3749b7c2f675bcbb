// Package prometheus adapts the engine's metrics hooks to Prometheus
// collectors.
package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/textrender/textrender/core"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	renderDurationSeconds *prom.HistogramVec
	renderFailureTotal    *prom.CounterVec
	jobRejectedTotal      *prom.CounterVec
	workerPanicTotal      prom.Counter
	queueDepth            prom.Gauge
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "textrender"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Render duration in seconds.",
		Buckets:   buckets,
	}, []string{"format"})
	failureVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "render_failure_total",
		Help:      "Total number of failed renders.",
	}, []string{"reason"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "job_rejected_total",
		Help:      "Total number of rejected pool submissions.",
	}, []string{"reason"})
	panicCounter := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "worker_panic_total",
		Help:      "Total number of worker panics.",
	})
	queueDepthGauge := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current pool queue depth.",
	})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if failureVec, err = registerCollector(reg, failureVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if panicCounter, err = registerCollector(reg, panicCounter); err != nil {
		return nil, err
	}
	if queueDepthGauge, err = registerCollector(reg, queueDepthGauge); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		renderDurationSeconds: durationVec,
		renderFailureTotal:    failureVec,
		jobRejectedTotal:      rejectedVec,
		workerPanicTotal:      panicCounter,
		queueDepth:            queueDepthGauge,
	}, nil
}

// RecordRenderDuration records one render's duration by output format.
func (m *MetricsExporter) RecordRenderDuration(format string, duration time.Duration) {
	if m == nil {
		return
	}
	m.renderDurationSeconds.WithLabelValues(normalizeLabel(format, "unknown")).Observe(duration.Seconds())
}

// RecordRenderFailure records a failed render or output write.
func (m *MetricsExporter) RecordRenderFailure(reason string) {
	if m == nil {
		return
	}
	m.renderFailureTotal.WithLabelValues(normalizeLabel(reason, "unknown")).Inc()
}

// RecordQueueDepth records the pool queue depth.
func (m *MetricsExporter) RecordQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

// RecordJobRejected records a rejected pool submission.
func (m *MetricsExporter) RecordJobRejected(reason string) {
	if m == nil {
		return
	}
	m.jobRejectedTotal.WithLabelValues(normalizeLabel(reason, "unknown")).Inc()
}

// RecordWorkerPanic records a panic recovered on a pool worker.
func (m *MetricsExporter) RecordWorkerPanic() {
	if m == nil {
		return
	}
	m.workerPanicTotal.Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
