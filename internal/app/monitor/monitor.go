// Package monitor drives one run: a fixed number of sequential humidity
// readings, threshold evaluation with a one-shot alert latch, fan-out to the
// configured sinks, and a closing summary.
package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/plantops/hygrowatch/internal/domain"
	"github.com/plantops/hygrowatch/internal/ports"
)

type Config struct {
	Iterations  int
	Interval    time.Duration
	Threshold   float64
	Calibration domain.Calibration

	// Out receives the human-readable table; defaults to io.Discard.
	Out io.Writer
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// Summary is what a completed run reports.
type Summary struct {
	Samples    []*domain.Sample
	AlertsSent int
	Alert      *domain.Alert
	Min        float64
	Max        float64
	Mean       float64
}

type Runner struct {
	cfg      Config
	probe    ports.Probe
	notifier ports.Notifier
	sinks    []ports.Sink
	obs      ports.Observability
}

// New assembles a runner. notifier may be nil when alerting is not
// configured; sinks may be empty.
func New(cfg Config, probe ports.Probe, notifier ports.Notifier, sinks []ports.Sink, obs ports.Observability) *Runner {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Calibration.ApplyDefaults()
	return &Runner{
		cfg:      cfg,
		probe:    probe,
		notifier: notifier,
		sinks:    sinks,
		obs:      obs,
	}
}

// Run performs the full sample-evaluate-maybe-alert loop. A failed reading
// aborts the run and names the failing iteration; a failed alert send is
// logged and the loop continues.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	latch := &Latch{}
	sum := &Summary{}

	fmt.Fprintf(r.cfg.Out, "%-6s %-20s %-8s %-10s %-8s\n", "No.", "Time", "Raw", "Humidity", "Status")

	for i := 1; i <= r.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 1 {
			if err := r.wait(ctx); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		raw, err := r.probe.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("read sample %d of %d: %w", i, r.cfg.Iterations, err)
		}
		r.obs.ObserveLatency("hygro_read_latency_seconds", time.Since(start).Seconds())

		s := &domain.Sample{
			Seq:       i,
			Timestamp: r.cfg.Now(),
			Raw:       raw,
			Humidity:  r.cfg.Calibration.Convert(raw),
		}
		s.Status = domain.StatusNormal
		if s.Humidity < r.cfg.Threshold {
			s.Status = domain.StatusLow
		}
		sum.Samples = append(sum.Samples, s)

		fmt.Fprintf(r.cfg.Out, "%-6d %-20s %-8d %-10.4f %-8s\n",
			s.Seq, s.Timestamp.Format(time.DateTime), s.Raw, s.Humidity, s.Status)

		r.obs.IncCounter("hygro_samples_total", 1)
		r.obs.SetGauge("hygro_humidity_ratio", s.Humidity)

		r.record(s)
		r.evaluate(ctx, s, latch, sum)
	}

	sum.Min, sum.Max, sum.Mean = describe(sum.Samples)
	r.printSummary(sum)
	return sum, nil
}

func (r *Runner) wait(ctx context.Context) error {
	if r.cfg.Interval <= 0 {
		return nil
	}
	timer := time.NewTimer(r.cfg.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) record(s *domain.Sample) {
	for _, sink := range r.sinks {
		if err := sink.WriteBatch([]*domain.Sample{s}); err != nil {
			r.obs.LogError("sink_write_failed", fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
}

func (r *Runner) evaluate(ctx context.Context, s *domain.Sample, latch *Latch, sum *Summary) {
	if s.Status != domain.StatusLow || latch.Fired() || r.notifier == nil {
		return
	}

	alert := &domain.Alert{Timestamp: s.Timestamp, Sample: *s}
	if err := r.notifier.Notify(ctx, alert); err != nil {
		r.obs.RecordAlertFailure(s, err)
		return
	}

	latch.Fire()
	sum.Alert = alert
	sum.AlertsSent++
	r.obs.IncCounter("hygro_alerts_sent_total", 1)
	fmt.Fprintf(r.cfg.Out, "[Alert] humidity %.4f below threshold %.4f, alert sent via %s\n",
		s.Humidity, r.cfg.Threshold, r.notifier.Name())
}

func (r *Runner) printSummary(sum *Summary) {
	fmt.Fprintf(r.cfg.Out, "\nRun complete: %d samples processed, %d alert(s) sent\n",
		len(sum.Samples), sum.AlertsSent)
	fmt.Fprintf(r.cfg.Out, "Humidity min=%.4f max=%.4f mean=%.4f\n", sum.Min, sum.Max, sum.Mean)
}

func describe(samples []*domain.Sample) (min, max, mean float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	min, max = samples[0].Humidity, samples[0].Humidity
	var total float64
	for _, s := range samples {
		if s.Humidity < min {
			min = s.Humidity
		}
		if s.Humidity > max {
			max = s.Humidity
		}
		total += s.Humidity
	}
	return min, max, total / float64(len(samples))
}
