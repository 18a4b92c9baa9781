package collector

import (
	"context"
	"math"
	"time"

	"PriceForecast/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Company   string
	BasePrice float64
	Points    int
	Start     time.Time
	// Data replaces the generated table when set.
	Data model.Table
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Load(_ context.Context) (model.Table, error) {
	if m.Data != nil {
		return m.Data, nil
	}
	return model.Table{m.Company: generateMockCloses(m.Company, m.BasePrice, m.Points, m.Start)}, nil
}

// generateMockCloses produces a trending, oscillating daily series.
func generateMockCloses(company string, basePrice float64, count int, start time.Time) []model.Observation {
	if basePrice <= 0 {
		basePrice = 100
	}
	if start.IsZero() {
		start = time.Date(2018, 11, 29, 0, 0, 0, 0, time.UTC)
	}
	obs := make([]model.Observation, count)
	for i := 0; i < count; i++ {
		x := float64(i)
		p := basePrice * (1 + x*0.0005 + 0.05*math.Sin(x/9) + 0.02*math.Sin(x/2.3))
		obs[i] = model.Observation{
			Date:    start.AddDate(0, 0, i),
			Close:   p,
			Company: company,
		}
	}
	return obs
}
