package collector

import (
	"context"

	"PriceForecast/internal/model"
)

// Source defines the interface for loading the raw price table.
type Source interface {
	Load(ctx context.Context) (model.Table, error)
	Name() string
}
