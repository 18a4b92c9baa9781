// Package calculator holds the price statistics used to put model forecasts
// in context: moving averages, ranges, RSI and naive baseline forecasts.
package calculator

import "fmt"

// Baseline names.
const (
	BaselineLast = "naive_last"
	BaselineSMA  = "naive_sma"
)

// Baselines forecasts each window with two naive rules: the last input value
// and the moving average of the window's last period values. A period longer
// than the window uses the whole window.
func Baselines(windows [][]float64, period int) (last, sma []float64, err error) {
	last = make([]float64, len(windows))
	sma = make([]float64, len(windows))
	for i, w := range windows {
		if len(w) == 0 {
			return nil, nil, fmt.Errorf("window %d is empty", i)
		}
		last[i] = w[len(w)-1]
		p := min(period, len(w))
		if sma[i], err = SMA(w, p); err != nil {
			return nil, nil, fmt.Errorf("window %d: %w", i, err)
		}
	}
	return last, sma, nil
}
