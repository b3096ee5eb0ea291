package hygrowatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrChannelNotifierClosed is returned when a channel notifier receives an
// alert after being closed.
var ErrChannelNotifierClosed = errors.New("hygrowatch: channel notifier closed")

// AlertFunc handles one alert.
type AlertFunc func(*Alert) error

// SampleBatchFunc handles one recorded batch of samples.
type SampleBatchFunc func([]*Sample) error

// NewCallbackNotifier adapts a function into a full Notifier so callers can
// route alerts anywhere without defining structs.
func NewCallbackNotifier(name string, fn AlertFunc) Notifier {
	if name == "" {
		name = "callback"
	}
	return &callbackNotifier{name: name, fn: fn}
}

// NewChannelNotifier exposes alerts via a channel; it returns the notifier,
// the read-only channel, and a close function for shutdown.
func NewChannelNotifier(name string, buffer int) (Notifier, <-chan *Alert, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan *Alert, buffer)
	n := &channelNotifier{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return n, ch, func() { n.close() }
}

// NewCallbackSink adapts a function into a Sink.
func NewCallbackSink(name string, fn SampleBatchFunc) Sink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

type callbackNotifier struct {
	name string
	fn   AlertFunc
}

func (n *callbackNotifier) Notify(ctx context.Context, a *Alert) error {
	if n.fn == nil {
		return fmt.Errorf("callback notifier %q: nil handler", n.name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.fn(a)
}

func (n *callbackNotifier) Name() string { return n.name }

type channelNotifier struct {
	name   string
	ch     chan *Alert
	closed chan struct{}
	once   sync.Once
}

func (n *channelNotifier) Notify(ctx context.Context, a *Alert) error {
	select {
	case <-n.closed:
		return ErrChannelNotifierClosed
	default:
	}

	select {
	case <-n.closed:
		return ErrChannelNotifierClosed
	case <-ctx.Done():
		return ctx.Err()
	case n.ch <- a:
		return nil
	}
}

func (n *channelNotifier) Name() string { return n.name }

func (n *channelNotifier) close() {
	n.once.Do(func() {
		close(n.closed)
		close(n.ch)
	})
}

type callbackSink struct {
	name string
	fn   SampleBatchFunc
}

func (s *callbackSink) WriteBatch(samples []*Sample) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if len(samples) == 0 {
		return nil
	}
	return s.fn(samples)
}

func (s *callbackSink) Name() string { return s.name }
