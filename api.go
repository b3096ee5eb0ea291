package hygrowatch

import (
	"context"
	"io"

	base "github.com/plantops/hygrowatch/pkg/hygrowatch"
)

// Re-exported errors for convenience.
var (
	ErrChannelNotifierClosed = base.ErrChannelNotifierClosed
)

// Type aliases so consumers can import github.com/plantops/hygrowatch directly.
type (
	Config          = base.Config
	PiConfig        = base.PiConfig
	SSHConfig       = base.SSHConfig
	SamplerConfig   = base.SamplerConfig
	AlertConfig     = base.AlertConfig
	SMTPConfig      = base.SMTPConfig
	HistoryConfig   = base.HistoryConfig
	RunLogConfig    = base.RunLogConfig
	MetricsConfig   = base.MetricsConfig
	SimulatorConfig = base.SimulatorConfig
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Feed            = base.Feed
	FeedConfig      = base.FeedConfig
	Sample          = base.Sample
	Status          = base.Status
	Alert           = base.Alert
	Calibration     = base.Calibration
	Probe           = base.Probe
	Notifier        = base.Notifier
	Sink            = base.Sink
	Observability   = base.Observability
	Field           = base.Field
	Summary         = base.Summary
	AlertFunc       = base.AlertFunc
	SampleBatchFunc = base.SampleBatchFunc
)

const (
	StatusNormal = base.StatusNormal
	StatusLow    = base.StatusLow
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() (*Config, error) {
	return base.DefaultConfig()
}

// Runtime construction and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithProbe(p Probe) RuntimeOption {
	return base.WithProbe(p)
}

func WithNotifier(n Notifier) RuntimeOption {
	return base.WithNotifier(n)
}

func WithSink(s Sink) RuntimeOption {
	return base.WithSink(s)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithOutput(w io.Writer) RuntimeOption {
	return base.WithOutput(w)
}

// Setup provisions the python stack on the configured host over SSH.
func Setup(ctx context.Context, cfg *Config, manifest string, out io.Writer) error {
	return base.Setup(ctx, cfg, manifest, out)
}

// Notifier and sink adapters.
func NewCallbackNotifier(name string, fn AlertFunc) Notifier {
	return base.NewCallbackNotifier(name, fn)
}

func NewChannelNotifier(name string, buffer int) (Notifier, <-chan *Alert, func()) {
	return base.NewChannelNotifier(name, buffer)
}

func NewCallbackSink(name string, fn SampleBatchFunc) Sink {
	return base.NewCallbackSink(name, fn)
}

// Push-based evaluation.
func NewFeed(cfg FeedConfig, notifier Notifier, sinks ...Sink) (*Feed, error) {
	return base.NewFeed(cfg, notifier, sinks...)
}
