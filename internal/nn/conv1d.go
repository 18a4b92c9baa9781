package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Conv1D is a valid-padding, stride-1 temporal convolution with relu.
type Conv1D struct {
	in, kernel int
	w, b       *Param

	patches [][]float64
	pre     [][]float64
}

// NewConv1D creates a convolution over in channels with the given number of
// filters and kernel width. Its output has kernel-1 fewer steps than its input.
func NewConv1D(in, filters, kernel int, rng *rand.Rand) *Conv1D {
	return &Conv1D{
		in:     in,
		kernel: kernel,
		w:      glorotParam(fmt.Sprintf("conv1d.w[%dx%d]", filters, kernel*in), filters, kernel*in, kernel*in, kernel*filters, rng),
		b:      newParam("conv1d.b", filters, 1),
	}
}

func (l *Conv1D) Forward(x [][]float64) [][]float64 {
	steps := len(x) - l.kernel + 1
	if steps < 0 {
		steps = 0
	}
	l.patches = make([][]float64, steps)
	l.pre = make([][]float64, steps)
	out := make([][]float64, steps)
	for t := 0; t < steps; t++ {
		patch := make([]float64, 0, l.kernel*l.in)
		for j := 0; j < l.kernel; j++ {
			patch = append(patch, x[t+j]...)
		}
		z := mulVec(l.w.Value, patch)
		floats.Add(z, l.b.data())
		y := append([]float64(nil), z...)
		apply(y, relu)
		l.patches[t], l.pre[t], out[t] = patch, z, y
	}
	return out
}

func (l *Conv1D) Backward(grad [][]float64) [][]float64 {
	dx := zeros(len(l.patches)+l.kernel-1, l.in)
	for t, g := range grad {
		gz := make([]float64, len(g))
		for j, v := range g {
			if l.pre[t][j] > 0 {
				gz[j] = v
			}
		}
		accumOuter(l.w.Grad, gz, l.patches[t])
		floats.Add(l.b.grad(), gz)
		dp := mulVecT(l.w.Value, gz)
		for j := 0; j < l.kernel; j++ {
			floats.Add(dx[t+j], dp[j*l.in:(j+1)*l.in])
		}
	}
	return dx
}

func (l *Conv1D) Params() []*Param { return []*Param{l.w, l.b} }
