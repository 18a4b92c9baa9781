// Package nn is a small sequence-regression network library: dense,
// one-dimensional convolution, GRU and LSTM layers trained with Adam on a
// mean squared error objective.
package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Param is a trainable tensor and its accumulated gradient.
type Param struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

func newParam(name string, rows, cols int) *Param {
	return &Param{
		Name:  name,
		Value: mat.NewDense(rows, cols, nil),
		Grad:  mat.NewDense(rows, cols, nil),
	}
}

// glorotParam draws the values from U(-limit, limit), limit = sqrt(6/(fanIn+fanOut)).
func glorotParam(name string, rows, cols, fanIn, fanOut int, rng *rand.Rand) *Param {
	p := newParam(name, rows, cols)
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	data := p.data()
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return p
}

// Size returns the number of scalar weights.
func (p *Param) Size() int {
	r, c := p.Value.Dims()
	return r * c
}

func (p *Param) data() []float64 { return p.Value.RawMatrix().Data }
func (p *Param) grad() []float64 { return p.Grad.RawMatrix().Data }

func mulVec(w *mat.Dense, x []float64) []float64 {
	r, _ := w.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(w, mat.NewVecDense(len(x), x))
	return out.RawVector().Data
}

// mulVecT returns w^T * g.
func mulVecT(w *mat.Dense, g []float64) []float64 {
	_, c := w.Dims()
	out := mat.NewVecDense(c, nil)
	out.MulVec(w.T(), mat.NewVecDense(len(g), g))
	return out.RawVector().Data
}

// accumOuter adds g * x^T to grad.
func accumOuter(grad *mat.Dense, g, x []float64) {
	grad.RankOne(grad, 1, mat.NewVecDense(len(g), g), mat.NewVecDense(len(x), x))
}
