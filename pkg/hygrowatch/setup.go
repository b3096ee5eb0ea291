package hygrowatch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/plantops/hygrowatch/internal/adapters/sshprobe"
	"github.com/plantops/hygrowatch/internal/setup"
)

// Setup connects to the configured host and provisions the python stack the
// reader script depends on. manifest may be empty to use the default lookup
// (./requirements.txt, then the single-package fallback).
func Setup(ctx context.Context, cfg *Config, manifest string, out io.Writer) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, "[setup] connecting to %s@%s:%d...\n",
		cfg.Pi.Username, cfg.Pi.Hostname, cfg.Pi.Port)
	probe, err := sshprobe.Connect(cfg.Pi.Config)
	if err != nil {
		return err
	}
	defer func() {
		if err := probe.Close(); err != nil {
			log.Printf("probe close: %v", err)
		}
	}()

	return setup.New(probe, manifest, out).Ensure(ctx)
}
