package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/plantops/hygrowatch/internal/adapters/mailer"
	"github.com/plantops/hygrowatch/internal/adapters/sshprobe"
	"github.com/plantops/hygrowatch/internal/domain"
)

// DefaultConnFile is the legacy key=value connection file consulted first.
const DefaultConnFile = "raspberry_pi_config.txt"

type Config struct {
	Pi          PiConfig           `yaml:"pi"`
	Sampler     SamplerConfig      `yaml:"sampler"`
	Calibration domain.Calibration `yaml:"calibration"`
	Alert       AlertConfig        `yaml:"alert"`
	History     HistoryConfig      `yaml:"history"`
	RunLog      RunLogConfig       `yaml:"runlog"`
	Metrics     MetricsConfig      `yaml:"metrics"`
	Simulator   SimulatorConfig    `yaml:"simulator"`
}

// PiConfig is the merged connection config. Fields resolve field-wise through
// explicit layers, highest precedence first:
//
//  1. key=value file (config_file, default raspberry_pi_config.txt)
//  2. environment variables PI_HOSTNAME / PI_USERNAME / PI_PASSWORD / PI_PORT
//     (a local .env file is folded into the environment first)
//  3. the yaml `pi:` section
//  4. built-in defaults (raspberrypi.local / pi / raspberry / 22)
//
// The result is read-only for the rest of the run.
type PiConfig struct {
	ConfigFile      string `yaml:"config_file"`
	sshprobe.Config `yaml:",inline"`
}

type SamplerConfig struct {
	Iterations int           `yaml:"iterations"`
	Interval   time.Duration `yaml:"interval"`
}

type AlertConfig struct {
	Threshold float64       `yaml:"threshold"`
	SMTP      mailer.Config `yaml:"smtp"`
}

// Enabled reports whether email alerting is configured at all.
func (a AlertConfig) Enabled() bool { return a.SMTP.Host != "" }

type HistoryConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type RunLogConfig struct {
	Dir string `yaml:"dir"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type SimulatorConfig struct {
	Enabled bool      `yaml:"enabled"`
	Seed    int64     `yaml:"seed"`
	Ratios  []float64 `yaml:"ratios"`
}

// Load reads the yaml file at path and finalizes it (defaults, connection
// layering, validation).
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default builds a config without a yaml file: defaults plus whatever the
// connection file and environment provide.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	c.applyDefaults()
	if err := c.resolveConnection(); err != nil {
		return err
	}
	return c.validate()
}

func (c *Config) applyDefaults() {
	if c.Pi.ConfigFile == "" {
		c.Pi.ConfigFile = DefaultConnFile
	}
	if c.Sampler.Iterations == 0 {
		c.Sampler.Iterations = 10
	}
	if c.Sampler.Interval == 0 {
		c.Sampler.Interval = time.Second
	}
	c.Calibration.ApplyDefaults()
	if c.Alert.Threshold == 0 {
		c.Alert.Threshold = 0.30
	}
	if c.Alert.Enabled() {
		c.Alert.SMTP.ApplyDefaults()
	}
	if c.History.Table == "" {
		c.History.Table = "humidity_samples"
	}
	if c.RunLog.Dir == "" {
		c.RunLog.Dir = "./data"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
}

func (c *Config) resolveConnection() error {
	// Layer 2: environment, folding in a .env if one exists.
	_ = godotenv.Load()
	applyConn(&c.Pi.Config, map[string]string{
		"HOSTNAME": os.Getenv("PI_HOSTNAME"),
		"USERNAME": os.Getenv("PI_USERNAME"),
		"PASSWORD": os.Getenv("PI_PASSWORD"),
		"PORT":     os.Getenv("PI_PORT"),
	})

	// Layer 1: the key=value file wins over everything when present.
	if kv, err := parseConnFile(c.Pi.ConfigFile); err != nil {
		return err
	} else if kv != nil {
		applyConn(&c.Pi.Config, kv)
	}

	// Layer 4: defaults fill whatever is still empty.
	c.Pi.ApplyDefaults()
	return nil
}

func applyConn(dst *sshprobe.Config, kv map[string]string) {
	if v := kv["HOSTNAME"]; v != "" {
		dst.Hostname = v
	}
	if v := kv["USERNAME"]; v != "" {
		dst.Username = v
	}
	if v := kv["PASSWORD"]; v != "" {
		dst.Password = v
	}
	if v := kv["PORT"]; v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			dst.Port = port
		}
	}
}

// parseConnFile reads HOSTNAME/USERNAME/PASSWORD/PORT from a key=value file.
// A missing file is not an error; it simply contributes no layer.
func parseConnFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	kv := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		kv[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return kv, nil
}

func (c *Config) validate() error {
	if err := c.Pi.Validate(); err != nil {
		return fmt.Errorf("pi config: %w", err)
	}
	if c.Sampler.Iterations < 1 {
		return fmt.Errorf("sampler.iterations must be >= 1")
	}
	if c.Sampler.Interval < 0 {
		return fmt.Errorf("sampler.interval must not be negative")
	}
	if c.Alert.Threshold <= 0 || c.Alert.Threshold >= 1 {
		return fmt.Errorf("alert.threshold must be a ratio in (0, 1)")
	}
	if c.Alert.Enabled() {
		if err := c.Alert.SMTP.Validate(); err != nil {
			return fmt.Errorf("alert.smtp: %w", err)
		}
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}
