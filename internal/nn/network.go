package nn

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"PriceForecast/internal/model"
)

var (
	// ErrNotTrained is returned by Predict and Evaluate before a successful Fit.
	ErrNotTrained = errors.New("model not trained")
	// ErrShapeMismatch is returned when inputs or targets do not match the network shape.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrModelFailed is returned once a network has failed; it cannot be used again.
	ErrModelFailed = errors.New("model failed")
	// ErrDiverged is returned when the training loss becomes NaN or infinite.
	ErrDiverged = errors.New("training diverged")
)

// State is the lifecycle stage of a Network.
type State int

const (
	StateBuilt State = iota
	StateTraining
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateTraining:
		return "training"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FitOptions controls one Fit call.
type FitOptions struct {
	Epochs    int
	BatchSize int
	// ValidationSplit is the fraction of examples, taken from the tail before
	// shuffling, held out to report validation loss.
	ValidationSplit float64
	Shuffle         bool
}

// History holds the per-epoch losses of one Fit call.
type History struct {
	Loss    []float64
	ValLoss []float64
}

// Final returns the last epoch's training and validation loss.
func (h History) Final() (loss, valLoss float64) {
	if n := len(h.Loss); n > 0 {
		loss = h.Loss[n-1]
	}
	if n := len(h.ValLoss); n > 0 {
		valLoss = h.ValLoss[n-1]
	}
	return loss, valLoss
}

// Network is a stack of layers mapping a steps x features sample to a
// vector of outputs. A Network is not safe for concurrent use.
type Network struct {
	name   string
	shape  model.Shape
	layers []Layer
	params []*Param
	opt    *Adam
	rng    *rand.Rand
	state  State
}

// NewNetwork wires layers into a network and checks that a sample of the
// given shape flows through them to Outputs values.
func NewNetwork(name string, shape model.Shape, layers []Layer, opt *Adam, rng *rand.Rand) (*Network, error) {
	if shape.Steps < 1 || shape.Features < 1 || shape.Outputs < 1 {
		return nil, fmt.Errorf("%w: %s: invalid shape %+v", ErrShapeMismatch, name, shape)
	}
	n := &Network{name: name, shape: shape, layers: layers, opt: opt, rng: rng}
	for _, l := range layers {
		n.params = append(n.params, l.Params()...)
	}
	if err := n.probe(); err != nil {
		return nil, err
	}
	return n, nil
}

// probe runs a zero sample through the layers. gonum panics on mismatched
// dimensions, so a panic here means the layers do not fit together.
func (n *Network) probe() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrShapeMismatch, n.name, r)
		}
	}()
	out := n.forwardRows(zeros(n.shape.Steps, n.shape.Features))
	if len(out) != 1 || len(out[0]) != n.shape.Outputs {
		return fmt.Errorf("%w: %s: layers produce %d rows, want 1 row of %d", ErrShapeMismatch, n.name, len(out), n.shape.Outputs)
	}
	return nil
}

func (n *Network) Name() string       { return n.name }
func (n *Network) Shape() model.Shape { return n.shape }
func (n *Network) State() State       { return n.state }

// NumParams returns the number of trainable weights.
func (n *Network) NumParams() int {
	total := 0
	for _, p := range n.params {
		total += p.Size()
	}
	return total
}

// Fit trains on X, y continuing from the current weights and optimizer state.
// A NaN or infinite loss moves the network to the failed state.
func (n *Network) Fit(X [][][]float64, y [][]float64, opts FitOptions) (History, error) {
	if n.state == StateFailed {
		return History{}, fmt.Errorf("%s: %w", n.name, ErrModelFailed)
	}
	if opts.Epochs < 1 || opts.BatchSize < 1 {
		return History{}, fmt.Errorf("%s: epochs and batch size must be positive", n.name)
	}
	if err := n.checkExamples(X, y); err != nil {
		n.state = StateFailed
		return History{}, err
	}
	n.state = StateTraining

	split := int(float64(len(X)) * (1 - opts.ValidationSplit))
	if split < 1 || split > len(X) {
		split = len(X)
	}
	order := make([]int, split)
	for i := range order {
		order[i] = i
	}

	var hist History
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		if opts.Shuffle {
			n.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		var sum float64
		for start := 0; start < len(order); start += opts.BatchSize {
			end := min(start+opts.BatchSize, len(order))
			n.zeroGrad()
			for _, i := range order[start:end] {
				sum += n.backprop(X[i], y[i])
			}
			if math.IsNaN(sum) || math.IsInf(sum, 0) {
				n.state = StateFailed
				return hist, fmt.Errorf("%s: epoch %d: %w: %w", n.name, epoch+1, ErrModelFailed, ErrDiverged)
			}
			n.scaleGrad(1 / float64(end-start))
			n.opt.Step(n.params)
		}
		hist.Loss = append(hist.Loss, sum/float64(len(order)))
		if split < len(X) {
			loss, _ := n.score(X[split:], y[split:])
			hist.ValLoss = append(hist.ValLoss, loss)
		}
	}

	n.state = StateReady
	return hist, nil
}

// Predict returns one output vector per sample.
func (n *Network) Predict(X [][][]float64) ([][]float64, error) {
	if n.state == StateFailed {
		return nil, fmt.Errorf("%s: %w", n.name, ErrModelFailed)
	}
	if n.state != StateReady {
		return nil, fmt.Errorf("%s is %s: %w", n.name, n.state, ErrNotTrained)
	}
	for i, x := range X {
		if err := n.checkSample(x); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}
	out := make([][]float64, len(X))
	for i, x := range X {
		out[i] = n.forward(x)
	}
	return out, nil
}

// Evaluate returns the mean squared error and binary accuracy over X, y.
func (n *Network) Evaluate(X [][][]float64, y [][]float64) (loss, accuracy float64, err error) {
	if n.state == StateFailed {
		return 0, 0, fmt.Errorf("%s: %w", n.name, ErrModelFailed)
	}
	if n.state != StateReady {
		return 0, 0, fmt.Errorf("%s is %s: %w", n.name, n.state, ErrNotTrained)
	}
	if err := n.checkExamples(X, y); err != nil {
		return 0, 0, err
	}
	loss, accuracy = n.score(X, y)
	return loss, accuracy, nil
}

func (n *Network) score(X [][][]float64, y [][]float64) (loss, accuracy float64) {
	for i, x := range X {
		p := n.forward(x)
		l, _ := MSE(p, y[i])
		loss += l
		accuracy += BinaryAccuracy(p, y[i])
	}
	count := float64(len(X))
	return loss / count, accuracy / count
}

func (n *Network) forwardRows(x [][]float64) [][]float64 {
	h := x
	for _, l := range n.layers {
		h = l.Forward(h)
	}
	return h
}

func (n *Network) forward(x [][]float64) []float64 {
	return n.forwardRows(x)[0]
}

// backprop runs one sample forward and backward, adding its gradients to
// the parameters, and returns its loss.
func (n *Network) backprop(x [][]float64, y []float64) float64 {
	loss, g := MSE(n.forward(x), y)
	grad := [][]float64{g}
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad = n.layers[i].Backward(grad)
	}
	return loss
}

func (n *Network) zeroGrad() {
	for _, p := range n.params {
		p.Grad.Zero()
	}
}

func (n *Network) scaleGrad(f float64) {
	for _, p := range n.params {
		p.Grad.Scale(f, p.Grad)
	}
}

func (n *Network) checkExamples(X [][][]float64, y [][]float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("%w: %s: %d inputs, %d targets", ErrShapeMismatch, n.name, len(X), len(y))
	}
	for i := range X {
		if err := n.checkSample(X[i]); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if len(y[i]) != n.shape.Outputs {
			return fmt.Errorf("%w: %s: target %d has %d values, want %d", ErrShapeMismatch, n.name, i, len(y[i]), n.shape.Outputs)
		}
	}
	return nil
}

func (n *Network) checkSample(x [][]float64) error {
	if len(x) != n.shape.Steps {
		return fmt.Errorf("%w: %s: %d steps, want %d", ErrShapeMismatch, n.name, len(x), n.shape.Steps)
	}
	for _, row := range x {
		if len(row) != n.shape.Features {
			return fmt.Errorf("%w: %s: %d features, want %d", ErrShapeMismatch, n.name, len(row), n.shape.Features)
		}
	}
	return nil
}
