package hygrowatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/plantops/hygrowatch/internal/app/monitor"
	"github.com/plantops/hygrowatch/internal/domain"
	"github.com/plantops/hygrowatch/internal/ports"
)

// FeedConfig configures push-based evaluation.
type FeedConfig struct {
	Threshold   float64
	Calibration Calibration
}

func (c *FeedConfig) applyDefaults() {
	if c.Threshold == 0 {
		c.Threshold = 0.30
	}
	c.Calibration.ApplyDefaults()
}

func (c *FeedConfig) validate() error {
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return fmt.Errorf("threshold must be a ratio in (0, 1)")
	}
	return nil
}

// Feed runs the convert → record → evaluate path for callers that already
// have raw readings in hand (an existing telemetry stream, a local bus) and
// need no SSH session. The one-shot alert latch behaves exactly as in a
// normal run: one successful notification per Feed lifetime.
type Feed struct {
	mu       sync.Mutex
	cfg      FeedConfig
	notifier ports.Notifier
	sinks    []ports.Sink
	latch    monitor.Latch
	seq      int
}

// NewFeed wires a push-based evaluator. notifier may be nil to disable
// alerting; sinks receive every published sample.
func NewFeed(cfg FeedConfig, notifier Notifier, sinks ...Sink) (*Feed, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Feed{cfg: cfg, notifier: notifier, sinks: sinks}, nil
}

// Publish converts one raw reading, records it, and evaluates the threshold.
// The returned sample is always valid when err covers only sink or
// notification failures; callers can inspect errors.Join results.
func (f *Feed) Publish(ctx context.Context, raw int) (*Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	s := &domain.Sample{
		Seq:       f.seq,
		Timestamp: time.Now(),
		Raw:       raw,
		Humidity:  f.cfg.Calibration.Convert(raw),
	}
	s.Status = domain.StatusNormal
	if s.Humidity < f.cfg.Threshold {
		s.Status = domain.StatusLow
	}

	var errs []error
	for _, sink := range f.sinks {
		if err := sink.WriteBatch([]*domain.Sample{s}); err != nil {
			errs = append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
		}
	}

	if s.Status == domain.StatusLow && !f.latch.Fired() && f.notifier != nil {
		alert := &domain.Alert{Timestamp: s.Timestamp, Sample: *s}
		if err := f.notifier.Notify(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("notify: %w", err))
		} else {
			f.latch.Fire()
		}
	}

	return s, errors.Join(errs...)
}

// Alerted reports whether this feed has already delivered its alert.
func (f *Feed) Alerted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latch.Fired()
}
