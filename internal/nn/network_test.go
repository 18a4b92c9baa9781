package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceForecast/internal/model"
)

// windows builds n examples of a smooth series with 3 inputs and 1 output.
func windows(count int) ([][][]float64, [][]float64) {
	series := make([]float64, count+3)
	for i := range series {
		series[i] = 0.5 + 0.4*math.Sin(float64(i)/4)
	}
	X := make([][][]float64, count)
	y := make([][]float64, count)
	for i := 0; i < count; i++ {
		X[i] = [][]float64{{series[i]}, {series[i+1]}, {series[i+2]}}
		y[i] = []float64{series[i+3]}
	}
	return X, y
}

func denseNet(t *testing.T, lr float64) *Network {
	t.Helper()
	rng := testRNG()
	n, err := NewNetwork("dense", model.Shape{Steps: 3, Features: 1, Outputs: 1},
		[]Layer{NewFlatten(), NewDense(3, 1, rng)}, NewAdam(lr), rng)
	require.NoError(t, err)
	return n
}

func TestNetwork_Lifecycle(t *testing.T) {
	n := denseNet(t, 0.01)
	X, y := windows(20)

	assert.Equal(t, StateBuilt, n.State())
	_, err := n.Predict(X)
	assert.ErrorIs(t, err, ErrNotTrained)
	_, _, err = n.Evaluate(X, y)
	assert.ErrorIs(t, err, ErrNotTrained)

	hist, err := n.Fit(X, y, FitOptions{Epochs: 3, BatchSize: 8, Shuffle: true})
	require.NoError(t, err)
	assert.Len(t, hist.Loss, 3)
	assert.Empty(t, hist.ValLoss)
	assert.Equal(t, StateReady, n.State())

	pred, err := n.Predict(X)
	require.NoError(t, err)
	require.Len(t, pred, len(X))
	for _, p := range pred {
		assert.Len(t, p, 1)
	}

	loss, acc, err := n.Evaluate(X, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, loss, 0.0)
	assert.GreaterOrEqual(t, acc, 0.0)
	assert.LessOrEqual(t, acc, 1.0)
}

func TestNetwork_ShapeMismatch(t *testing.T) {
	n := denseNet(t, 0.01)
	X, y := windows(10)
	_, err := n.Fit(X, y, FitOptions{Epochs: 1, BatchSize: 4})
	require.NoError(t, err)

	bad := [][][]float64{{{0.1}, {0.2}}}
	_, err = n.Predict(bad)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, StateReady, n.State(), "a rejected predict leaves the model usable")

	_, err = n.Fit(bad, [][]float64{{0.3}}, FitOptions{Epochs: 1, BatchSize: 4})
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, StateFailed, n.State())

	_, err = n.Fit(X, y, FitOptions{Epochs: 1, BatchSize: 4})
	assert.ErrorIs(t, err, ErrModelFailed)
	_, err = n.Predict(X)
	assert.ErrorIs(t, err, ErrModelFailed)
	assert.NotErrorIs(t, err, ErrNotTrained)
	_, _, err = n.Evaluate(X, y)
	assert.ErrorIs(t, err, ErrModelFailed)
}

func TestNetwork_Diverged(t *testing.T) {
	n := denseNet(t, 0.01)
	n.params[0].data()[0] = math.NaN()
	X, y := windows(10)

	_, err := n.Fit(X, y, FitOptions{Epochs: 2, BatchSize: 4})
	assert.ErrorIs(t, err, ErrDiverged)
	assert.ErrorIs(t, err, ErrModelFailed)
	assert.Equal(t, StateFailed, n.State())
}

func TestNetwork_OptimizerStatePersists(t *testing.T) {
	n := denseNet(t, 0.01)
	X, y := windows(10)

	_, err := n.Fit(X, y, FitOptions{Epochs: 2, BatchSize: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, n.opt.Iterations())

	_, err = n.Fit(X, y, FitOptions{Epochs: 1, BatchSize: 4})
	require.NoError(t, err)
	assert.Equal(t, 9, n.opt.Iterations())
}

func TestNetwork_ValidationSplit(t *testing.T) {
	n := denseNet(t, 0.01)
	X, y := windows(10)

	hist, err := n.Fit(X, y, FitOptions{Epochs: 4, BatchSize: 32, ValidationSplit: 0.3})
	require.NoError(t, err)
	assert.Len(t, hist.ValLoss, 4)
	// 7 training examples make one batch per epoch
	assert.Equal(t, 4, n.opt.Iterations())

	single := denseNet(t, 0.01)
	hist, err = single.Fit(X[:1], y[:1], FitOptions{Epochs: 2, BatchSize: 32, ValidationSplit: 0.3})
	require.NoError(t, err)
	assert.Empty(t, hist.ValLoss)
}

func TestNetwork_LossDecreases(t *testing.T) {
	X, y := windows(60)
	rng := testRNG()
	shape := model.Shape{Steps: 3, Features: 1, Outputs: 1}

	nets := map[string][]Layer{
		"dense": {NewFlatten(), NewDense(3, 1, rng)},
		"lstm":  {NewLSTM(1, 4, false, rng), NewDense(4, 1, rng)},
		"gru":   {NewGRU(1, 4, false, rng), NewDense(4, 1, rng)},
	}
	for name, layers := range nets {
		t.Run(name, func(t *testing.T) {
			n, err := NewNetwork(name, shape, layers, NewAdam(0.01), rng)
			require.NoError(t, err)
			hist, err := n.Fit(X, y, FitOptions{Epochs: 40, BatchSize: 8, Shuffle: true})
			require.NoError(t, err)
			last, _ := hist.Final()
			assert.Less(t, last, hist.Loss[0])
		})
	}
}

func TestNetwork_Deterministic(t *testing.T) {
	X, y := windows(20)
	run := func() [][]float64 {
		n := denseNet(t, 0.01)
		_, err := n.Fit(X, y, FitOptions{Epochs: 3, BatchSize: 4, Shuffle: true})
		require.NoError(t, err)
		pred, err := n.Predict(X)
		require.NoError(t, err)
		return pred
	}
	assert.Equal(t, run(), run())
}

func TestNewNetwork_RejectsUnfitLayers(t *testing.T) {
	rng := testRNG()
	shape := model.Shape{Steps: 3, Features: 1, Outputs: 1}

	_, err := NewNetwork("conv1d", shape, []Layer{
		NewConv1D(1, 2, 3, rng),
		NewConv1D(2, 2, 3, rng),
		NewFlatten(),
		NewDense(2, 1, rng),
	}, NewAdam(0.01), rng)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewNetwork("dense", shape, []Layer{NewFlatten(), NewDense(3, 2, rng)}, NewAdam(0.01), rng)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewNetwork("empty", model.Shape{}, nil, NewAdam(0.01), rng)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "built", StateBuilt.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
