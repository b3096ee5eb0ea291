package hygrowatch

import (
	"github.com/plantops/hygrowatch/internal/adapters/mailer"
	"github.com/plantops/hygrowatch/internal/adapters/sshprobe"
	"github.com/plantops/hygrowatch/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// PiConfig is the layered connection config for the target host.
	PiConfig = config.PiConfig
	// SSHConfig holds the raw connection fields.
	SSHConfig = sshprobe.Config
	// SamplerConfig controls iteration count and interval.
	SamplerConfig = config.SamplerConfig
	// AlertConfig holds the threshold and mail settings.
	AlertConfig = config.AlertConfig
	// SMTPConfig configures the mail-submission endpoint.
	SMTPConfig = mailer.Config
	// HistoryConfig configures the optional Postgres sink.
	HistoryConfig = config.HistoryConfig
	// RunLogConfig configures the CSV run log.
	RunLogConfig = config.RunLogConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// SimulatorConfig configures hardware-free runs.
	SimulatorConfig = config.SimulatorConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig builds a config from defaults, the connection file, and the
// environment, without requiring a yaml file.
func DefaultConfig() (*Config, error) {
	return config.Default()
}
