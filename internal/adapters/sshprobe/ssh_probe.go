package sshprobe

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/plantops/hygrowatch/internal/ports"
)

// RemoteScriptPath is where the ADC reader script lands on the Pi.
const RemoteScriptPath = "/tmp/hygrowatch_read.py"

//go:embed reader.py
var readerScript string

// ErrAuthFailed marks a reachable host that rejected the credentials.
var ErrAuthFailed = errors.New("authentication rejected")

// ErrUnreachable marks a host that could not be dialed at all.
var ErrUnreachable = errors.New("host unreachable")

// Config captures the runtime details required to open an SSH session to the Pi.
type Config struct {
	Hostname       string        `yaml:"hostname"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	Port           int           `yaml:"port"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Channel        int           `yaml:"channel"`
}

func (c *Config) ApplyDefaults() {
	if c.Hostname == "" {
		c.Hostname = "raspberrypi.local"
	}
	if c.Username == "" {
		c.Username = "pi"
	}
	if c.Password == "" {
		c.Password = "raspberry"
	}
	if c.Port == 0 {
		c.Port = 22
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Hostname == "" {
		return errors.New("hostname is required")
	}
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Channel < 0 || c.Channel > 3 {
		return fmt.Errorf("adc channel %d out of range (ADS1115 has A0-A3)", c.Channel)
	}
	return nil
}

// DeviceReport summarizes what the remote host exposes. Informational only;
// a missing ADC is reported, not fatal, so operators can fix wiring first.
type DeviceReport struct {
	Model      string
	I2CDevice  string
	ADCPresent bool
}

// Probe reads the humidity channel over an established SSH connection.
// One exec session is opened per reading; the TCP connection is shared.
type Probe struct {
	cfg    Config
	client *ssh.Client
}

// Connect dials the Pi and returns a ready probe. Unreachable hosts and
// rejected credentials wrap distinct sentinel errors so callers can tell
// the two failure modes apart.
func Connect(cfg Config) (*Probe, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(cfg.Hostname, strconv.Itoa(cfg.Port))
	clientCfg := &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.ConnectTimeout,
	}

	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, classifyDialError(addr, cfg.Username, err)
	}

	return &Probe{cfg: cfg, client: client}, nil
}

func classifyDialError(addr, user string, err error) error {
	if strings.Contains(err.Error(), "unable to authenticate") ||
		strings.Contains(err.Error(), "permission denied") {
		return fmt.Errorf("ssh %s as %q: %w: %v", addr, user, ErrAuthFailed, err)
	}
	return fmt.Errorf("ssh %s: %w: %v", addr, ErrUnreachable, err)
}

// Run executes one remote command and returns its combined output.
func (p *Probe) Run(ctx context.Context, cmd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	session, err := p.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	out, err := session.CombinedOutput(cmd)
	return strings.TrimSpace(string(out)), err
}

// DetectDevices inspects the remote host for the expected hardware.
func (p *Probe) DetectDevices(ctx context.Context) (DeviceReport, error) {
	var rep DeviceReport

	model, err := p.Run(ctx, "cat /proc/device-tree/model 2>/dev/null || echo 'Raspberry Pi'")
	if err != nil {
		return rep, fmt.Errorf("detect model: %w", err)
	}
	rep.Model = model

	if dev, err := p.Run(ctx, "ls /dev/i2c-* 2>/dev/null | head -1"); err == nil {
		rep.I2CDevice = dev
	}

	out, err := p.Run(ctx, "i2cdetect -y 1 | grep -o '48' || echo 'not found'")
	if err == nil && out == "48" {
		rep.ADCPresent = true
	}

	return rep, nil
}

// Provision uploads the ADC reader script to RemoteScriptPath via SFTP.
func (p *Probe) Provision(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sc, err := sftp.NewClient(p.client)
	if err != nil {
		return fmt.Errorf("open sftp: %w", err)
	}
	defer sc.Close()

	f, err := sc.Create(RemoteScriptPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", RemoteScriptPath, err)
	}
	if _, err := f.Write([]byte(readerScript)); err != nil {
		f.Close()
		return fmt.Errorf("write reader script: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close reader script: %w", err)
	}
	return sc.Chmod(RemoteScriptPath, 0o755)
}

// UploadFile copies a local payload to the remote path. Used by setup to
// ship a dependency manifest before installing from it.
func (p *Probe) UploadFile(ctx context.Context, remotePath string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sc, err := sftp.NewClient(p.client)
	if err != nil {
		return fmt.Errorf("open sftp: %w", err)
	}
	defer sc.Close()

	f, err := sc.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create %s: %w", remotePath, err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", remotePath, err)
	}
	return f.Close()
}

// Read acquires one raw ADC value from the configured channel.
func (p *Probe) Read(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	session, err := p.client.NewSession()
	if err != nil {
		return 0, fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	out, err := session.Output(fmt.Sprintf("python3 %s %d", RemoteScriptPath, p.cfg.Channel))
	if err != nil {
		return 0, fmt.Errorf("remote read: %w", err)
	}
	return parseReading(out)
}

func (p *Probe) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func parseReading(out []byte) (int, error) {
	s := strings.TrimSpace(string(out))
	raw, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid adc reading %q", s)
	}
	return raw, nil
}

var _ ports.Probe = (*Probe)(nil)
