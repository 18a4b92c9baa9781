package nn

import "math"

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func apply(v []float64, fn func(float64) float64) {
	for i := range v {
		v[i] = fn(v[i])
	}
}
