// Package bank builds the set of competing regressors trained by a run.
package bank

import (
	"fmt"
	"math/rand/v2"

	"PriceForecast/internal/model"
	"PriceForecast/internal/nn"
)

// Architecture names, in registry order.
const (
	LSTM   = "lstm"
	Conv1D = "conv1d"
	GRU    = "gru"
)

var registryOrder = []string{LSTM, Conv1D, GRU}

// Options describes the shared shape contract and per-architecture sizes.
type Options struct {
	Shape        model.Shape
	LearningRate float64
	Seed         uint64
	// Enabled lists the architectures to build; empty builds all of them.
	Enabled []string

	Conv1DFilters int
	Conv1DKernel  int
	GRUUnits      int
	GRULayers     int
	LSTMUnits     int
	LSTMLayers    int
}

// TrainableModel is one named network. Its weights and optimizer state are
// carried from fold to fold.
type TrainableModel struct {
	Name string
	Net  *nn.Network
}

func (m *TrainableModel) Fit(X [][][]float64, y [][]float64, opts nn.FitOptions) (nn.History, error) {
	return m.Net.Fit(X, y, opts)
}

func (m *TrainableModel) Evaluate(X [][][]float64, y [][]float64) (float64, float64, error) {
	return m.Net.Evaluate(X, y)
}

func (m *TrainableModel) Predict(X [][][]float64) ([][]float64, error) {
	return m.Net.Predict(X)
}

func (m *TrainableModel) State() nn.State { return m.Net.State() }

// Bank is a registry of models keyed by name with a fixed iteration order.
type Bank struct {
	models map[string]*TrainableModel
	names  []string
}

// Build constructs every enabled architecture. Models never share weights
// and each draws its initial weights from its own seeded stream.
func Build(opts Options) (*Bank, error) {
	enabled := make(map[string]bool, len(opts.Enabled))
	for _, name := range opts.Enabled {
		enabled[name] = true
	}
	for name := range enabled {
		if !known(name) {
			return nil, fmt.Errorf("unknown architecture %q", name)
		}
	}

	b := &Bank{models: make(map[string]*TrainableModel)}
	for stream, name := range registryOrder {
		if len(enabled) > 0 && !enabled[name] {
			continue
		}
		rng := rand.New(rand.NewPCG(opts.Seed, uint64(stream)+1))
		net, err := buildNetwork(name, opts, rng)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		b.models[name] = &TrainableModel{Name: name, Net: net}
		b.names = append(b.names, name)
	}
	return b, nil
}

func known(name string) bool {
	for _, n := range registryOrder {
		if n == name {
			return true
		}
	}
	return false
}

func buildNetwork(name string, opts Options, rng *rand.Rand) (*nn.Network, error) {
	var layers []nn.Layer
	in := opts.Shape.Features
	switch name {
	case Conv1D:
		f, k := opts.Conv1DFilters, opts.Conv1DKernel
		if need := 2*(k-1) + 1; opts.Shape.Steps < need {
			return nil, fmt.Errorf("%w: %d input steps, two convolutions of kernel %d need %d",
				nn.ErrShapeMismatch, opts.Shape.Steps, k, need)
		}
		steps := opts.Shape.Steps - 2*(k-1)
		layers = []nn.Layer{
			nn.NewConv1D(in, f, k, rng),
			nn.NewConv1D(f, f, k, rng),
			nn.NewFlatten(),
			nn.NewDense(steps*f, opts.Shape.Outputs, rng),
		}
	case GRU:
		for i := 0; i < opts.GRULayers; i++ {
			layers = append(layers, nn.NewGRU(in, opts.GRUUnits, i < opts.GRULayers-1, rng))
			in = opts.GRUUnits
		}
		layers = append(layers, nn.NewDense(in, opts.Shape.Outputs, rng))
	case LSTM:
		for i := 0; i < opts.LSTMLayers; i++ {
			layers = append(layers, nn.NewLSTM(in, opts.LSTMUnits, i < opts.LSTMLayers-1, rng))
			in = opts.LSTMUnits
		}
		layers = append(layers, nn.NewDense(in, opts.Shape.Outputs, rng))
	}
	return nn.NewNetwork(name, opts.Shape, layers, nn.NewAdam(opts.LearningRate), rng)
}

// Names returns the model names in registry order.
func (b *Bank) Names() []string { return append([]string(nil), b.names...) }

// Get returns a model by name.
func (b *Bank) Get(name string) (*TrainableModel, bool) {
	m, ok := b.models[name]
	return m, ok
}

// Models returns the models in registry order.
func (b *Bank) Models() []*TrainableModel {
	out := make([]*TrainableModel, len(b.names))
	for i, name := range b.names {
		out[i] = b.models[name]
	}
	return out
}

func (b *Bank) Len() int { return len(b.names) }
