// Package setup provisions the python stack the reader script needs on the
// remote host: verify python3 and pip, upgrade pip, then install either the
// local dependency manifest or the single fallback package.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrRuntimeMissing means the remote host has no python3 runtime.
	ErrRuntimeMissing = errors.New("python3 runtime not found")
	// ErrPipMissing means the runtime exists but has no package manager.
	ErrPipMissing = errors.New("pip3 not found")
	// ErrInstallFailed wraps a failed dependency install.
	ErrInstallFailed = errors.New("dependency install failed")
)

// FallbackPackage is installed when no dependency manifest exists.
const FallbackPackage = "Adafruit-ADS1x15>=1.0.2"

// DefaultManifest is the local manifest consulted before falling back.
const DefaultManifest = "requirements.txt"

const remoteManifestPath = "/tmp/hygrowatch_requirements.txt"

// Runner executes commands and ships files to the target host.
// sshprobe.Probe satisfies it.
type Runner interface {
	Run(ctx context.Context, cmd string) (string, error)
	UploadFile(ctx context.Context, remotePath string, payload []byte) error
}

type Installer struct {
	runner   Runner
	manifest string
	out      io.Writer
}

func New(runner Runner, manifest string, out io.Writer) *Installer {
	if manifest == "" {
		manifest = DefaultManifest
	}
	if out == nil {
		out = io.Discard
	}
	return &Installer{runner: runner, manifest: manifest, out: out}
}

// Ensure brings the target host to a state where the reader script can run.
// Runtime and package-manager absence and install failures are fatal; the
// pip self-upgrade failing only warns.
func (i *Installer) Ensure(ctx context.Context) error {
	if _, err := i.runner.Run(ctx, "python3 --version"); err != nil {
		return fmt.Errorf("%w: install it first (sudo apt install python3)", ErrRuntimeMissing)
	}
	fmt.Fprintln(i.out, "[setup] python3 runtime present")

	if _, err := i.runner.Run(ctx, "pip3 --version"); err != nil {
		return fmt.Errorf("%w: install it first (sudo apt install python3-pip)", ErrPipMissing)
	}
	fmt.Fprintln(i.out, "[setup] pip3 package manager present")

	if _, err := i.runner.Run(ctx, "pip3 install --upgrade pip --quiet"); err != nil {
		fmt.Fprintf(i.out, "[setup] warning: pip upgrade failed, continuing: %v\n", err)
	} else {
		fmt.Fprintln(i.out, "[setup] pip upgraded")
	}

	cmd, err := i.installCommand(ctx)
	if err != nil {
		return err
	}
	if output, err := i.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrInstallFailed, err, output)
	}

	fmt.Fprintln(i.out, "[setup] dependencies installed")
	fmt.Fprintln(i.out, "[setup] next: run `hygrowatch run` to start monitoring")
	return nil
}

// installCommand picks manifest-driven install when the local manifest
// exists, otherwise the single-package fallback.
func (i *Installer) installCommand(ctx context.Context) (string, error) {
	data, err := os.ReadFile(i.manifest)
	switch {
	case err == nil:
		if err := i.runner.UploadFile(ctx, remoteManifestPath, data); err != nil {
			return "", fmt.Errorf("upload manifest %s: %w", i.manifest, err)
		}
		fmt.Fprintf(i.out, "[setup] installing from manifest %s\n", i.manifest)
		return fmt.Sprintf("pip3 install -r %s --quiet", remoteManifestPath), nil
	case os.IsNotExist(err):
		fmt.Fprintf(i.out, "[setup] no manifest found, installing %s\n", FallbackPackage)
		return fmt.Sprintf("pip3 install %q --quiet", FallbackPackage), nil
	default:
		return "", fmt.Errorf("read manifest %s: %w", i.manifest, err)
	}
}
