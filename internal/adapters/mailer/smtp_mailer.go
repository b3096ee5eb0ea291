package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/plantops/hygrowatch/internal/domain"
	"github.com/plantops/hygrowatch/internal/ports"
)

const defaultSubject = "Watering Alert - Low Humidity Detected"

// Config describes the mail submission endpoint. Submission runs on port 587
// and gomail upgrades the connection with STARTTLS when the server offers it.
type Config struct {
	Host      string  `yaml:"host"`
	Port      int     `yaml:"port"`
	Sender    string  `yaml:"sender"`
	Password  string  `yaml:"password"`
	Recipient string  `yaml:"recipient"`
	Subject   string  `yaml:"subject"`
	Threshold float64 `yaml:"-"`
}

func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 587
	}
	if c.Subject == "" {
		c.Subject = defaultSubject
	}
	if c.Recipient == "" {
		c.Recipient = c.Sender
	}
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("smtp host is required")
	}
	if c.Sender == "" {
		return errors.New("smtp sender is required")
	}
	if c.Recipient == "" {
		return errors.New("smtp recipient is required")
	}
	return nil
}

// Mailer sends one plain-text watering alert per call.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

func New(cfg Config) (*Mailer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password),
	}, nil
}

func (m *Mailer) Name() string { return "smtp" }

// Notify fills in the alert envelope from config, renders the body, and
// submits the message. The populated alert doubles as the run's alert record.
func (m *Mailer) Notify(ctx context.Context, a *domain.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Populate(a)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Sender)
	msg.SetHeader("To", a.Recipient)
	msg.SetHeader("Subject", a.Subject)
	msg.SetBody("text/plain", a.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp submit to %s:%d: %w", m.cfg.Host, m.cfg.Port, err)
	}
	return nil
}

// Populate completes the envelope and body for the given alert without
// sending it. Exposed so the composition can be verified in isolation.
func (m *Mailer) Populate(a *domain.Alert) {
	if a.Recipient == "" {
		a.Recipient = m.cfg.Recipient
	}
	if a.Subject == "" {
		a.Subject = m.cfg.Subject
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = a.Sample.Timestamp
	}
	if a.Body == "" {
		a.Body = renderBody(a.Sample, m.cfg.Threshold)
	}
}

func renderBody(s domain.Sample, threshold float64) string {
	return fmt.Sprintf(`Humidity Monitoring System Alert

ALERT: Low Humidity Detected - Watering Required!

Timestamp: %s
Sample: #%d
Current Humidity: %.4f (%.2f%%)
Threshold: %.4f (%.2f%%)

The humidity level has dropped below the recommended threshold.
Please water your plants to restore optimal growing conditions.

This is an automated alert from hygrowatch.
`,
		s.Timestamp.Format(time.DateTime),
		s.Seq,
		s.Humidity, s.Humidity*100,
		threshold, threshold*100,
	)
}

var _ ports.Notifier = (*Mailer)(nil)
