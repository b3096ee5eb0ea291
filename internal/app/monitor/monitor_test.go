package monitor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/plantops/hygrowatch/internal/adapters/simprobe"
	"github.com/plantops/hygrowatch/internal/domain"
	"github.com/plantops/hygrowatch/internal/ports"
)

// percentCal makes raw counts read as percentages: Convert(raw) = raw/100.
var percentCal = domain.Calibration{ADCMax: 100, ReferenceVolts: 1, SensorVolts: 1}

type fakeNotifier struct {
	failures int
	alerts   []*domain.Alert
}

func (n *fakeNotifier) Name() string { return "fake" }

func (n *fakeNotifier) Notify(_ context.Context, a *domain.Alert) error {
	if n.failures > 0 {
		n.failures--
		return errors.New("smtp unreachable")
	}
	n.alerts = append(n.alerts, a)
	return nil
}

type memSink struct {
	batches [][]*domain.Sample
	fail    bool
}

func (s *memSink) Name() string { return "mem" }

func (s *memSink) WriteBatch(batch []*domain.Sample) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.batches = append(s.batches, batch)
	return nil
}

type mockObs struct {
	errors       []error
	sendFailures int
	counters     map[string]float64
}

func (m *mockObs) LogInfo(string, ...ports.Field) {}
func (m *mockObs) LogError(_ string, err error, _ ...ports.Field) {
	m.errors = append(m.errors, err)
}
func (m *mockObs) LogCritical(string, error, ...ports.Field) {}
func (m *mockObs) IncCounter(name string, v float64) {
	if m.counters == nil {
		m.counters = make(map[string]float64)
	}
	m.counters[name] += v
}
func (m *mockObs) ObserveLatency(string, float64) {}
func (m *mockObs) SetGauge(string, float64)       {}
func (m *mockObs) RecordAlertFailure(*domain.Sample, error) {
	m.sendFailures++
}

func runCfg(iterations int) Config {
	return Config{
		Iterations:  iterations,
		Threshold:   0.30,
		Calibration: percentCal,
	}
}

func TestRunDocumentedScenario(t *testing.T) {
	// Ten percentage readings with the first breach at the fourth sample.
	ratios := []float64{0.45, 0.40, 0.35, 0.28, 0.25, 0.30, 0.32, 0.38, 0.42, 0.44}
	probe := simprobe.FromRatios(ratios, domain.DefaultCalibration())
	notifier := &fakeNotifier{}
	sink := &memSink{}
	obs := &mockObs{}

	cfg := runCfg(10)
	cfg.Calibration = domain.DefaultCalibration()
	var out bytes.Buffer
	cfg.Out = &out

	sum, err := New(cfg, probe, notifier, []ports.Sink{sink}, obs).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sum.Samples) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(sum.Samples))
	}
	if sum.AlertsSent != 1 {
		t.Fatalf("expected exactly one alert, got %d", sum.AlertsSent)
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("expected notifier to receive one alert, got %d", len(notifier.alerts))
	}
	if got := sum.Alert.Sample.Seq; got != 4 {
		t.Fatalf("expected alert to reference sample 4, got %d", got)
	}
	if diff := sum.Alert.Sample.Humidity - 0.28; diff > 0.001 || diff < -0.001 {
		t.Fatalf("expected triggering humidity ~0.28, got %.4f", sum.Alert.Sample.Humidity)
	}
	if len(sink.batches) != 10 {
		t.Fatalf("expected every sample recorded, got %d batches", len(sink.batches))
	}
	if !strings.Contains(out.String(), "10 samples processed, 1 alert(s) sent") {
		t.Fatalf("summary line missing:\n%s", out.String())
	}
}

func TestThresholdComparisonIsStrict(t *testing.T) {
	// Exactly at the threshold is Normal; only strictly below alerts.
	probe := simprobe.NewSequence([]int{30, 31})
	notifier := &fakeNotifier{}
	obs := &mockObs{}

	sum, err := New(runCfg(2), probe, notifier, nil, obs).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.AlertsSent != 0 {
		t.Fatalf("expected no alert at threshold boundary, got %d", sum.AlertsSent)
	}
	if sum.Samples[0].Status != domain.StatusNormal {
		t.Fatalf("expected sample at threshold to be Normal, got %s", sum.Samples[0].Status)
	}
}

func TestAlertSentOnlyOncePerRun(t *testing.T) {
	probe := simprobe.NewSequence([]int{20, 10, 5})
	notifier := &fakeNotifier{}
	obs := &mockObs{}

	sum, err := New(runCfg(3), probe, notifier, nil, obs).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.AlertsSent != 1 {
		t.Fatalf("expected one alert for three breaches, got %d", sum.AlertsSent)
	}
	if sum.Alert.Sample.Seq != 1 {
		t.Fatalf("expected first breach to trigger, got seq %d", sum.Alert.Sample.Seq)
	}
}

func TestFailedSendLeavesLatchOpen(t *testing.T) {
	probe := simprobe.NewSequence([]int{20, 40, 10})
	notifier := &fakeNotifier{failures: 1}
	obs := &mockObs{}

	sum, err := New(runCfg(3), probe, notifier, nil, obs).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if obs.sendFailures != 1 {
		t.Fatalf("expected one recorded send failure, got %d", obs.sendFailures)
	}
	if sum.AlertsSent != 1 {
		t.Fatalf("expected retry on later breach to succeed, got %d alerts", sum.AlertsSent)
	}
	if sum.Alert.Sample.Seq != 3 {
		t.Fatalf("expected the third sample to carry the alert, got seq %d", sum.Alert.Sample.Seq)
	}
}

func TestReadFailureAbortsWithIterationIndex(t *testing.T) {
	probe := simprobe.NewSequence([]int{50})
	obs := &mockObs{}

	_, err := New(runCfg(3), probe, nil, nil, obs).Run(context.Background())
	if err == nil {
		t.Fatalf("expected run to abort on read failure")
	}
	if !strings.Contains(err.Error(), "read sample 2 of 3") {
		t.Fatalf("expected failing iteration in error, got %v", err)
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := simprobe.NewSequence([]int{50, 50})
	obs := &mockObs{}

	_, err := New(runCfg(2), probe, nil, nil, obs).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSinkFailureDoesNotAbort(t *testing.T) {
	probe := simprobe.NewSequence([]int{50, 60})
	sink := &memSink{fail: true}
	obs := &mockObs{}

	sum, err := New(runCfg(2), probe, nil, []ports.Sink{sink}, obs).Run(context.Background())
	if err != nil {
		t.Fatalf("run should survive sink failures: %v", err)
	}
	if len(sum.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(sum.Samples))
	}
	if len(obs.errors) != 2 {
		t.Fatalf("expected sink failures logged, got %d", len(obs.errors))
	}
}

func TestSummaryStatistics(t *testing.T) {
	probe := simprobe.NewSequence([]int{10, 20, 30})
	obs := &mockObs{}

	sum, err := New(runCfg(3), probe, nil, nil, obs).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Min != 0.10 || sum.Max != 0.30 {
		t.Fatalf("expected min 0.10 max 0.30, got %.4f/%.4f", sum.Min, sum.Max)
	}
	if diff := sum.Mean - 0.20; diff > 0.0001 || diff < -0.0001 {
		t.Fatalf("expected mean 0.20, got %.4f", sum.Mean)
	}
}
