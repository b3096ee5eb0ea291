package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/plantops/hygrowatch/internal/domain"
)

func TestPromObsMetrics(t *testing.T) {
	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	obs := NewPromObs()

	obs.IncCounter("hygro_samples_total", 10)
	if got := testutil.ToFloat64(obs.counters["hygro_samples_total"]); got != 10 {
		t.Fatalf("expected samples counter 10, got %f", got)
	}

	obs.IncCounter("hygro_alerts_sent_total", 1)
	if got := testutil.ToFloat64(obs.counters["hygro_alerts_sent_total"]); got != 1 {
		t.Fatalf("expected alerts counter 1, got %f", got)
	}

	obs.SetGauge("hygro_humidity_ratio", 0.28)
	if got := testutil.ToFloat64(obs.gauges["hygro_humidity_ratio"]); got != 0.28 {
		t.Fatalf("expected humidity gauge 0.28, got %f", got)
	}

	obs.ObserveLatency("hygro_read_latency_seconds", 0.05)
	hCollector := obs.histos["hygro_read_latency_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	obs.RecordAlertFailure(&domain.Sample{Seq: 4, Humidity: 0.28}, errors.New("smtp down"))
	if got := testutil.ToFloat64(obs.counters["hygro_alert_send_failures_total"]); got != 1 {
		t.Fatalf("expected send failure counter 1, got %f", got)
	}
}
