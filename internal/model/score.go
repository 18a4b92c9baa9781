package model

import "time"

// FoldScore is the evaluation of one model on one fold's test block.
type FoldScore struct {
	Fold     int
	Model    string
	Loss     float64
	Accuracy float64
	ValLoss  float64 // last epoch validation loss, 0 when no validation split
	Duration time.Duration
}

// Forecast is one model's de-normalized predictions over the test windows.
type Forecast struct {
	Model  string
	Values []float64
}

// Prediction is the outcome of predicting the held-out windows.
type Prediction struct {
	Forecasts []Forecast
	// Baselines are naive forecasts over the same windows, for comparison.
	Baselines []Forecast
	// Actual is the full company series in original price units.
	Actual []Point
	// Dates are the test dates each forecast value is plotted against.
	Dates []time.Time
	// Offset is the index in Actual of the close the first forecast predicts.
	Offset int
}

// Forecast returns the forecast for a model by name.
func (p *Prediction) Forecast(name string) (Forecast, bool) {
	for _, f := range p.Forecasts {
		if f.Model == name {
			return f, true
		}
	}
	return Forecast{}, false
}
