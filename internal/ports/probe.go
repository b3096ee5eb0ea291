package ports

import "context"

// Probe acquires one raw ADC reading per call.
type Probe interface {
	Read(ctx context.Context) (int, error)
	Close() error
}
