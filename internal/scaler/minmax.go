// Package scaler implements min-max normalization of closing prices.
package scaler

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmpty is returned when fitting on no values.
	ErrEmpty = errors.New("scaler: no values to fit")
	// ErrAllMissing is returned when every value is NaN or infinite.
	ErrAllMissing = errors.New("scaler: all values are missing")
)

// MinMax maps the fitted [Min, Max] range onto [0, 1]. The zero value is not
// usable; obtain one from Fit or FitTransform. A fitted MinMax is never refit.
type MinMax struct {
	min   float64
	max   float64
	scale float64
}

// Fit learns the range of the finite values.
func Fit(values []float64) (MinMax, error) {
	if len(values) == 0 {
		return MinMax{}, ErrEmpty
	}
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return MinMax{}, ErrAllMissing
	}
	lo, hi := floats.Min(finite), floats.Max(finite)
	scale := hi - lo
	if scale == 0 {
		// constant series maps to 0
		scale = 1
	}
	return MinMax{min: lo, max: hi, scale: scale}, nil
}

// FitTransform fits on values and returns them normalized.
func FitTransform(values []float64) (MinMax, []float64, error) {
	s, err := Fit(values)
	if err != nil {
		return MinMax{}, nil, err
	}
	return s, s.Transform(values), nil
}

// Min returns the fitted minimum.
func (s MinMax) Min() float64 { return s.min }

// Max returns the fitted maximum.
func (s MinMax) Max() float64 { return s.max }

// Transform normalizes values. Values outside the fitted range land outside [0, 1].
func (s MinMax) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.min) / s.scale
	}
	return out
}

// Inverse maps normalized values back to original units.
func (s MinMax) Inverse(normalized []float64) []float64 {
	out := make([]float64, len(normalized))
	for i, v := range normalized {
		out[i] = v*s.scale + s.min
	}
	return out
}
