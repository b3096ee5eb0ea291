package hygrowatch

import (
	"context"
	"errors"
	"testing"

	"github.com/plantops/hygrowatch/internal/domain"
)

func TestCallbackNotifier(t *testing.T) {
	var got *Alert
	n := NewCallbackNotifier("", func(a *Alert) error {
		got = a
		return nil
	})
	if n.Name() != "callback" {
		t.Fatalf("expected default name callback, got %s", n.Name())
	}

	a := &Alert{Sample: domain.Sample{Seq: 4}}
	if err := n.Notify(context.Background(), a); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got != a {
		t.Fatalf("callback did not receive the alert")
	}
}

func TestCallbackNotifierNilHandler(t *testing.T) {
	n := NewCallbackNotifier("bad", nil)
	if err := n.Notify(context.Background(), &Alert{}); err == nil {
		t.Fatalf("expected error for nil handler")
	}
}

func TestChannelNotifierDeliversAndCloses(t *testing.T) {
	n, ch, closeFn := NewChannelNotifier("alerts", 1)

	a := &Alert{Sample: domain.Sample{Seq: 2}}
	if err := n.Notify(context.Background(), a); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := <-ch; got != a {
		t.Fatalf("channel did not deliver the alert")
	}

	closeFn()
	if err := n.Notify(context.Background(), a); !errors.Is(err, ErrChannelNotifierClosed) {
		t.Fatalf("expected ErrChannelNotifierClosed, got %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}

func TestCallbackSinkSkipsEmptyBatch(t *testing.T) {
	calls := 0
	s := NewCallbackSink("", func([]*Sample) error {
		calls++
		return nil
	})
	if err := s.WriteBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if calls != 0 {
		t.Fatalf("empty batch must not invoke the handler")
	}
	if err := s.WriteBatch([]*Sample{{Seq: 1}}); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one handler call, got %d", calls)
	}
}
