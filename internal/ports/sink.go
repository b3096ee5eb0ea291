package ports

import "github.com/plantops/hygrowatch/internal/domain"

type Sink interface {
	WriteBatch(samples []*domain.Sample) error
	Name() string
}
