package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMSE(t *testing.T) {
	loss, grad := MSE([]float64{1, 2}, []float64{0, 4})
	assert.InDelta(t, 2.5, loss, 1e-12)
	assert.InDeltaSlice(t, []float64{1, -2}, grad, 1e-12)
}

func TestBinaryAccuracy(t *testing.T) {
	tests := []struct {
		name   string
		pred   []float64
		target []float64
		want   float64
	}{
		{"all same side", []float64{0.9, 0.1}, []float64{0.7, 0.2}, 1},
		{"half", []float64{0.9, 0.9}, []float64{0.7, 0.2}, 0.5},
		{"threshold is exclusive", []float64{0.5}, []float64{0.6}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BinaryAccuracy(tt.pred, tt.target), 1e-12)
		})
	}
}
