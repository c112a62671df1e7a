package collector

import (
	"context"

	"RetentionSentinel/internal/model"
)

// Batch is what a Source hands back: the parsed orders plus the number
// of rows it had to skip because they could not be parsed.
type Batch struct {
	Orders  []model.Order
	Invalid int
}

// Source defines the interface for loading the order history.
type Source interface {
	Load(ctx context.Context) (Batch, error)
	Name() string
}

// StaticSource returns a fixed set of orders, for development and testing.
type StaticSource struct {
	Orders []model.Order
	Err    error
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Load(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	if s.Err != nil {
		return Batch{}, s.Err
	}
	out := make([]model.Order, len(s.Orders))
	copy(out, s.Orders)
	return Batch{Orders: out}, nil
}
