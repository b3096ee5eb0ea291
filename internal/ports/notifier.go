package ports

import (
	"context"

	"github.com/plantops/hygrowatch/internal/domain"
)

// Notifier delivers a watering alert over some out-of-band channel.
type Notifier interface {
	Notify(ctx context.Context, a *domain.Alert) error
	Name() string
}
