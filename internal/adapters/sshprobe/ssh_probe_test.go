package sshprobe

import (
	"errors"
	"testing"
	"time"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Hostname != "raspberrypi.local" {
		t.Fatalf("expected default hostname raspberrypi.local, got %s", cfg.Hostname)
	}
	if cfg.Username != "pi" {
		t.Fatalf("expected default username pi, got %s", cfg.Username)
	}
	if cfg.Port != 22 {
		t.Fatalf("expected default port 22, got %d", cfg.Port)
	}
	if cfg.ConnectTimeout != 10*time.Second {
		t.Fatalf("expected default timeout 10s, got %s", cfg.ConnectTimeout)
	}
}

func TestConfigValidateChannel(t *testing.T) {
	cfg := Config{Hostname: "h", Username: "u", Port: 22, Channel: 4}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected channel 4 to be rejected")
	}
	cfg.Channel = 3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("channel 3 should be valid: %v", err)
	}
}

func TestParseReading(t *testing.T) {
	raw, err := parseReading([]byte("  18231\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if raw != 18231 {
		t.Fatalf("expected 18231, got %d", raw)
	}

	if _, err := parseReading([]byte("Traceback (most recent call last)")); err == nil {
		t.Fatalf("expected error for non-numeric output")
	}
}

func TestClassifyDialError(t *testing.T) {
	authErr := classifyDialError("pi:22", "pi", errors.New("ssh: handshake failed: ssh: unable to authenticate, attempted methods [none password]"))
	if !errors.Is(authErr, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", authErr)
	}

	dialErr := classifyDialError("pi:22", "pi", errors.New("dial tcp 192.168.1.100:22: i/o timeout"))
	if !errors.Is(dialErr, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", dialErr)
	}
	if errors.Is(dialErr, ErrAuthFailed) {
		t.Fatalf("timeout must not classify as auth failure")
	}
}
