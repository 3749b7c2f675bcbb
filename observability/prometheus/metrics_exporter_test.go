package prometheus

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("textrender", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordRenderDuration("png", 250*time.Millisecond)
	exporter.RecordRenderFailure("render")
	exporter.RecordQueueDepth(7)
	exporter.RecordJobRejected("pool stopped")
	exporter.RecordWorkerPanic()

	failures := testutil.ToFloat64(exporter.renderFailureTotal.WithLabelValues("render"))
	if failures != 1 {
		t.Fatalf("failure total = %v, want 1", failures)
	}

	queueDepth := testutil.ToFloat64(exporter.queueDepth)
	if queueDepth != 7 {
		t.Fatalf("queue depth = %v, want 7", queueDepth)
	}

	rejected := testutil.ToFloat64(exporter.jobRejectedTotal.WithLabelValues("pool stopped"))
	if rejected != 1 {
		t.Fatalf("rejected total = %v, want 1", rejected)
	}

	panics := testutil.ToFloat64(exporter.workerPanicTotal)
	if panics != 1 {
		t.Fatalf("panic total = %v, want 1", panics)
	}

	histCount, err := histogramSampleCount(exporter.renderDurationSeconds.WithLabelValues("png"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if histCount != 1 {
		t.Fatalf("duration sample count = %d, want 1", histCount)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("textrender", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("textrender", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordRenderFailure("render")
	second.RecordRenderFailure("render")

	got := testutil.ToFloat64(first.renderFailureTotal.WithLabelValues("render"))
	if got != 2 {
		t.Fatalf("shared failure counter = %v, want 2", got)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
