package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Dense is a fully connected linear layer applied to every row of its input.
type Dense struct {
	w, b   *Param
	inputs [][]float64
}

// NewDense creates a Dense layer mapping in channels to out channels.
func NewDense(in, out int, rng *rand.Rand) *Dense {
	return &Dense{
		w: glorotParam(fmt.Sprintf("dense.w[%dx%d]", out, in), out, in, in, out, rng),
		b: newParam("dense.b", out, 1),
	}
}

func (l *Dense) Forward(x [][]float64) [][]float64 {
	l.inputs = x
	out := make([][]float64, len(x))
	for t, row := range x {
		y := mulVec(l.w.Value, row)
		floats.Add(y, l.b.data())
		out[t] = y
	}
	return out
}

func (l *Dense) Backward(grad [][]float64) [][]float64 {
	dx := make([][]float64, len(grad))
	for t, g := range grad {
		accumOuter(l.w.Grad, g, l.inputs[t])
		floats.Add(l.b.grad(), g)
		dx[t] = mulVecT(l.w.Value, g)
	}
	return dx
}

func (l *Dense) Params() []*Param { return []*Param{l.w, l.b} }
