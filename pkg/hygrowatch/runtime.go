package hygrowatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plantops/hygrowatch/internal/adapters/mailer"
	"github.com/plantops/hygrowatch/internal/adapters/observability"
	"github.com/plantops/hygrowatch/internal/adapters/runlog"
	"github.com/plantops/hygrowatch/internal/adapters/simprobe"
	"github.com/plantops/hygrowatch/internal/adapters/sink"
	"github.com/plantops/hygrowatch/internal/adapters/sshprobe"
	"github.com/plantops/hygrowatch/internal/app/monitor"
	"github.com/plantops/hygrowatch/internal/ports"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	probe         ports.Probe
	notifier      ports.Notifier
	sinks         []ports.Sink
	observability ports.Observability
	out           io.Writer
}

// WithProbe injects a custom reading source (simulators, other buses, tests).
func WithProbe(p Probe) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.probe = p
	}
}

// WithNotifier replaces the SMTP notifier with any alert channel.
func WithNotifier(n Notifier) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.notifier = n
	}
}

// WithSink appends an extra sample sink alongside the configured ones.
func WithSink(s Sink) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.sinks = append(o.sinks, s)
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithOutput redirects the human-readable run table (default os.Stdout).
func WithOutput(w io.Writer) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.out = w
	}
}

// Runtime wires probe → monitor → sinks/notifier for one run and owns the
// lifecycle of every acquired resource (SSH connection, DB pool, metrics
// server, run log).
type Runtime struct {
	cfg       *Config
	overrides runtimeOverrides

	probe      ports.Probe
	notifier   ports.Notifier
	sinks      []ports.Sink
	obs        ports.Observability
	out        io.Writer
	db         *sql.DB
	csv        *runlog.CSVLog
	metricsSrv *http.Server
}

// NewRuntime validates the config and records overrides. No connection is
// opened until Run.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	rt := &Runtime{cfg: cfg, overrides: overrides}
	rt.out = overrides.out
	if rt.out == nil {
		rt.out = os.Stdout
	}
	rt.obs = overrides.observability
	if rt.obs == nil {
		rt.obs = observability.NewPromObs()
	}
	return rt, nil
}

// Run acquires resources, performs the monitoring run, and releases
// everything on every exit path.
func (r *Runtime) Run(ctx context.Context) (*Summary, error) {
	if err := r.start(ctx); err != nil {
		r.shutdown()
		return nil, err
	}
	defer r.shutdown()

	runner := monitor.New(monitor.Config{
		Iterations:  r.cfg.Sampler.Iterations,
		Interval:    r.cfg.Sampler.Interval,
		Threshold:   r.cfg.Alert.Threshold,
		Calibration: r.cfg.Calibration,
		Out:         r.out,
	}, r.probe, r.notifier, r.sinks, r.obs)

	return runner.Run(ctx)
}

func (r *Runtime) start(ctx context.Context) error {
	if err := r.openProbe(ctx); err != nil {
		return err
	}
	if err := r.openNotifier(); err != nil {
		return err
	}
	if err := r.openSinks(); err != nil {
		return err
	}
	r.startMetrics()
	return nil
}

func (r *Runtime) openProbe(ctx context.Context) error {
	if r.overrides.probe != nil {
		r.probe = r.overrides.probe
		return nil
	}

	if r.cfg.Simulator.Enabled {
		cal := r.cfg.Calibration
		cal.ApplyDefaults()
		if len(r.cfg.Simulator.Ratios) > 0 {
			r.probe = simprobe.FromRatios(r.cfg.Simulator.Ratios, cal)
		} else {
			r.probe = simprobe.NewRandomWalk(r.cfg.Simulator.Seed, cal)
		}
		fmt.Fprintln(r.out, "[probe] simulator enabled, no hardware required")
		return nil
	}

	fmt.Fprintf(r.out, "[probe] connecting to %s@%s:%d...\n",
		r.cfg.Pi.Username, r.cfg.Pi.Hostname, r.cfg.Pi.Port)
	probe, err := sshprobe.Connect(r.cfg.Pi.Config)
	if err != nil {
		return err
	}
	r.probe = probe

	rep, err := probe.DetectDevices(ctx)
	if err != nil {
		return fmt.Errorf("detect devices: %w", err)
	}
	fmt.Fprintf(r.out, "[probe] detected: %s\n", rep.Model)
	if rep.I2CDevice != "" {
		fmt.Fprintf(r.out, "[probe] detected: I2C device %s\n", rep.I2CDevice)
	}
	if rep.ADCPresent {
		fmt.Fprintln(r.out, "[probe] detected: ADS1115 ADC module (I2C address 0x48)")
	} else {
		fmt.Fprintln(r.out, "[probe] warning: ADS1115 not detected at address 0x48")
	}

	if err := probe.Provision(ctx); err != nil {
		return fmt.Errorf("provision reader script: %w", err)
	}
	return nil
}

func (r *Runtime) openNotifier() error {
	if r.overrides.notifier != nil {
		r.notifier = r.overrides.notifier
		return nil
	}
	if !r.cfg.Alert.Enabled() {
		fmt.Fprintln(r.out, "[alert] smtp not configured, alerting disabled")
		return nil
	}

	smtpCfg := r.cfg.Alert.SMTP
	smtpCfg.Threshold = r.cfg.Alert.Threshold
	m, err := mailer.New(smtpCfg)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	r.notifier = m
	fmt.Fprintf(r.out, "[alert] email alerts to %s via %s:%d\n",
		smtpCfg.Recipient, smtpCfg.Host, smtpCfg.Port)
	return nil
}

func (r *Runtime) openSinks() error {
	csv, err := runlog.New(r.cfg.RunLog.Dir, time.Now())
	if err != nil {
		return fmt.Errorf("run log: %w", err)
	}
	r.csv = csv
	r.sinks = append(r.sinks, csv)
	fmt.Fprintf(r.out, "[record] run log at %s\n", csv.Path())

	if r.cfg.History.ConnString != "" {
		db, err := sql.Open("postgres", r.cfg.History.ConnString)
		if err != nil {
			return fmt.Errorf("history db: %w", err)
		}
		r.db = db
		r.sinks = append(r.sinks, sink.NewHistorySink(db, r.cfg.History.Table))
	}

	r.sinks = append(r.sinks, r.overrides.sinks...)
	return nil
}

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}
	r.metricsSrv = srv

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()
}

func (r *Runtime) shutdown() {
	if r.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.metricsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics shutdown: %v", err)
		}
		cancel()
		r.metricsSrv = nil
	}
	if r.csv != nil {
		if err := r.csv.Close(); err != nil {
			log.Printf("run log close: %v", err)
		}
		r.csv = nil
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			log.Printf("history db close: %v", err)
		}
		r.db = nil
	}
	if r.probe != nil && r.overrides.probe == nil {
		if err := r.probe.Close(); err != nil {
			log.Printf("probe close: %v", err)
		}
		r.probe = nil
	}
}
