// Package simprobe provides a Probe that needs no hardware: either a scripted
// raw-count sequence or a seeded random walk around a midpoint. Used for demo
// runs and for exercising the monitor deterministically.
package simprobe

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/plantops/hygrowatch/internal/domain"
	"github.com/plantops/hygrowatch/internal/ports"
)

type Probe struct {
	values []int
	next   int
	rng    *rand.Rand
	last   int
	cal    domain.Calibration
}

// NewSequence returns a probe that replays the given raw counts in order
// and fails once the sequence is exhausted.
func NewSequence(raws []int) *Probe {
	vals := make([]int, len(raws))
	copy(vals, raws)
	return &Probe{values: vals}
}

// FromRatios scripts a probe from humidity ratios (0..1) by inverting the
// calibration, so operators can express scenarios in percentages.
func FromRatios(ratios []float64, cal domain.Calibration) *Probe {
	cal.ApplyDefaults()
	raws := make([]int, len(ratios))
	for i, r := range ratios {
		raws[i] = cal.Invert(r)
	}
	return NewSequence(raws)
}

// NewRandomWalk returns an endless probe wandering around the ratio midpoint.
func NewRandomWalk(seed int64, cal domain.Calibration) *Probe {
	cal.ApplyDefaults()
	return &Probe{
		rng:  rand.New(rand.NewSource(seed)),
		last: cal.Invert(0.5),
		cal:  cal,
	}
}

func (p *Probe) Read(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if p.rng != nil {
		step := p.cal.Invert(0.05)
		p.last += p.rng.Intn(2*step+1) - step
		if p.last < 0 {
			p.last = 0
		}
		if max := p.cal.ADCMax; p.last > max {
			p.last = max
		}
		return p.last, nil
	}

	if p.next >= len(p.values) {
		return 0, fmt.Errorf("simulated sequence exhausted after %d readings", len(p.values))
	}
	raw := p.values[p.next]
	p.next++
	return raw, nil
}

func (p *Probe) Close() error { return nil }

var _ ports.Probe = (*Probe)(nil)
