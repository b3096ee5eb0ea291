package observability

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/plantops/hygrowatch/internal/domain"
	"github.com/plantops/hygrowatch/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	samples := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hygro_samples_total",
		Help: "Total humidity samples acquired this run.",
	})
	alerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hygro_alerts_sent_total",
		Help: "Watering alerts successfully submitted.",
	})
	sendFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hygro_alert_send_failures_total",
		Help: "Alert submissions that failed and were skipped.",
	})
	humidity := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hygro_humidity_ratio",
		Help: "Most recent humidity reading as a 0-1 ratio.",
	})
	readLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hygro_read_latency_seconds",
		Help:    "Latency of one remote ADC read over SSH.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	prometheus.MustRegister(samples, alerts, sendFailures, humidity, readLatency)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"hygro_samples_total":             samples,
			"hygro_alerts_sent_total":         alerts,
			"hygro_alert_send_failures_total": sendFailures,
		},
		gauges: map[string]prometheus.Gauge{
			"hygro_humidity_ratio": humidity,
		},
		histos: map[string]prometheus.Observer{
			"hygro_read_latency_seconds": readLatency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v", msg, err)
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v", msg, err)
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordAlertFailure(s *domain.Sample, err error) {
	p.IncCounter("hygro_alert_send_failures_total", 1)
	if err != nil && s != nil {
		log.Printf("alert send failed seq=%d humidity=%.4f err=%v", s.Seq, s.Humidity, err)
	}
}

var _ ports.Observability = (*PromObs)(nil)
