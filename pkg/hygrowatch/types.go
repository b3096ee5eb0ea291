package hygrowatch

import (
	"github.com/plantops/hygrowatch/internal/app/monitor"
	"github.com/plantops/hygrowatch/internal/domain"
	"github.com/plantops/hygrowatch/internal/ports"
)

// Sample is one humidity reading taken during a run.
type Sample = domain.Sample

// Status classifies a sample against the watering threshold.
type Status = domain.Status

const (
	StatusNormal = domain.StatusNormal
	StatusLow    = domain.StatusLow
)

// Alert is the single watering notification a run may produce.
type Alert = domain.Alert

// Calibration maps raw ADC counts to a humidity ratio.
type Calibration = domain.Calibration

// Probe acquires raw readings from any source (SSH, simulator, custom hardware).
type Probe = ports.Probe

// Notifier delivers a watering alert (SMTP, callbacks, channels, webhooks).
type Notifier = ports.Notifier

// Sink records sample batches to any downstream store.
type Sink = ports.Sink

// Observability emits metrics/logs about the run.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Summary is what a completed run reports.
type Summary = monitor.Summary
