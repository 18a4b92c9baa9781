package evaluator

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"PriceForecast/internal/bank"
	"PriceForecast/internal/model"
	"PriceForecast/internal/scaler"
)

// TestPrediction predicts every held-out window with each model, averages the
// output steps of each window and maps the result back to price units. The
// full series is de-normalized as the actual curve. Forecast i belongs to
// window i of xInput.
func TestPrediction(b *bank.Bank, xInput [][][]float64, series model.PreparedSeries, sc scaler.MinMax) (*model.Prediction, error) {
	pred := &model.Prediction{}
	for _, m := range b.Models() {
		out, err := m.Predict(xInput)
		if err != nil {
			return nil, fmt.Errorf("predict %s: %w", m.Name, err)
		}
		means := make([]float64, len(out))
		for i, o := range out {
			means[i] = stat.Mean(o, nil)
		}
		pred.Forecasts = append(pred.Forecasts, model.Forecast{
			Model:  m.Name,
			Values: sc.Inverse(means),
		})
	}

	actual := sc.Inverse(series.Closes())
	pred.Actual = make([]model.Point, series.Len())
	for i, p := range series.Points {
		pred.Actual[i] = model.Point{Date: p.Date, Close: actual[i]}
	}
	return pred, nil
}
